package logs

import (
	"io"
	"log"
)

// NewNoopLogger creates loggers which discard everything logged to them.
func NewNoopLogger(loggerSource string) (loggers Loggers, err error) {
	loggers = &GenericLoggers{
		Output: log.New(io.Discard, "", log.LstdFlags),
		Error:  log.New(io.Discard, "", log.LstdFlags),
	}
	return
}
