/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package proc

import (
	"os/exec"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
)

const (
	errAccessDenied = "Access is denied"
)

// ConvertProcessError converts errors raised when dealing with processes into the common taxonomy.
func ConvertProcessError(err error) error {
	err = commonerrors.ConvertContextError(err)
	switch {
	case err == nil:
		return err
	case commonerrors.Any(err, exec.ErrNotFound):
		return commonerrors.WrapError(commonerrors.ErrNotFound, err, "")
	case commonerrors.Any(err, process.ErrorNotPermitted):
		return commonerrors.WrapError(commonerrors.ErrForbidden, err, "")
	case commonerrors.Any(err, process.ErrorProcessNotRunning):
		return commonerrors.WrapError(commonerrors.ErrNotFound, err, "")
	case commonerrors.CorrespondTo(err, errAccessDenied):
		return commonerrors.WrapError(commonerrors.ErrForbidden, err, "")
	default:
		return err
	}
}
