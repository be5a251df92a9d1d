/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/elevated-command/golang-elevated/elevated/config"
)

// Configuration defines the tunables of an elevated invocation.
type Configuration struct {
	// PollInterval is the interval at which the streaming monitor polls the capture files.
	PollInterval time.Duration `mapstructure:"pollinterval"`
	// SettleDelay is the delay observed after the exit code file appears, so that the final
	// reads do not race the writer.
	SettleDelay time.Duration `mapstructure:"settledelay"`
	// GraceDelay is the initial delay before polling starts, giving the privilege prompt and
	// the wrapper script time to start.
	GraceDelay time.Duration `mapstructure:"gracedelay"`
	// Timeout is the overall ceiling for the invocation, measured from the end of the grace
	// delay. It fires unconditionally; a dismissed prompt is its most common cause.
	Timeout time.Duration `mapstructure:"timeout"`
	// HeuristicWaitDelay bounds how long the blocking collector waits for the exit code file
	// when no waitable broker handle is available. This fallback can truncate the output of
	// slow commands and is only used when UseHeuristicWait is set.
	HeuristicWaitDelay time.Duration `mapstructure:"heuristicwaitdelay"`
	// UseHeuristicWait makes the blocking collector use the fixed-delay fallback even when a
	// waitable handle could be obtained.
	UseHeuristicWait bool `mapstructure:"useheuristicwait"`
	// TempDirectory is where the wrapper script and capture files are created. When empty,
	// the filesystem default temporary directory is used.
	TempDirectory string `mapstructure:"tempdirectory"`
}

// Validate validates configuration entries.
func (cfg *Configuration) Validate() error {
	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.PollInterval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&cfg.SettleDelay, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&cfg.GraceDelay, validation.Min(time.Duration(0))),
		validation.Field(&cfg.Timeout, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&cfg.HeuristicWaitDelay, validation.Required, validation.Min(time.Millisecond)),
	)
}

// DefaultConfiguration returns the default invocation tunables.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		PollInterval:       100 * time.Millisecond,
		SettleDelay:        50 * time.Millisecond,
		GraceDelay:         time.Second,
		Timeout:            120 * time.Second,
		HeuristicWaitDelay: 5 * time.Second,
		UseHeuristicWait:   false,
		TempDirectory:      "",
	}
}

// LoadConfiguration loads the invocation tunables from the environment (e.g. ELEVATED_TIMEOUT),
// defaulting to DefaultConfiguration for anything not set.
func LoadConfiguration(envVarPrefix string) (cfg *Configuration, err error) {
	cfg = &Configuration{}
	err = config.Load(envVarPrefix, cfg, DefaultConfiguration())
	if err != nil {
		cfg = nil
	}
	return
}
