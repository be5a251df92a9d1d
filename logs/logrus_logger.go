/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package logs

import (
	"fmt"
	"log"

	"github.com/sirupsen/logrus"
)

// NewLogrusLogger creates loggers over a logrus logger (https://github.com/sirupsen/logrus).
func NewLogrusLogger(logrusL *logrus.Logger, loggerSource string) (loggers Loggers, err error) {
	loggers = &GenericLoggers{
		Output: log.New(logrusL.WriterLevel(logrus.InfoLevel), fmt.Sprintf("[%v] ", loggerSource), log.LstdFlags),
		Error:  log.New(logrusL.WriterLevel(logrus.ErrorLevel), fmt.Sprintf("[%v] ", loggerSource), log.LstdFlags),
	}
	return
}
