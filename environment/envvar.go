/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package environment

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
)

var (
	envvarKeyRegex   = regexp.MustCompile("^[a-zA-Z_][a-zA-Z0-9_]*$")
	errEnvvarInvalid = validation.NewError("validation_is_environment_variable", "must be a valid Posix environment variable")
)

type EnvVar struct {
	key   string
	value string
}

func (e *EnvVar) MarshalText() (text []byte, err error) {
	err = e.Validate()
	text = []byte(e.String())
	return
}

func (e *EnvVar) UnmarshalText(text []byte) error {
	env, err := ParseEnvironmentVariable(string(text))
	if err != nil {
		return err
	}
	e.key = env.GetKey()
	e.value = env.GetValue()
	return nil
}

func (e *EnvVar) Equal(v IEnvironmentVariable) bool {
	if v == nil {
		return e == nil
	}
	if e == nil {
		return false
	}
	return e.GetKey() == v.GetKey() && e.GetValue() == v.GetValue()
}

func (e *EnvVar) GetKey() string {
	return e.key
}

func (e *EnvVar) GetValue() string {
	return e.value
}

func (e *EnvVar) String() string {
	return fmt.Sprintf("%v=%v", e.GetKey(), e.GetValue())
}

func (e *EnvVar) Validate() (err error) {
	err = validation.Validate(e.GetKey(), validation.Required, validation.NewStringRuleWithError(isEnvVarKey, errEnvvarInvalid))
	if err != nil {
		err = commonerrors.Newf(commonerrors.ErrInvalid, "environment variable name `%v` is not valid: %v", e.GetKey(), err.Error())
	}
	return
}

func isEnvVarKey(value string) bool {
	return envvarKeyRegex.MatchString(value)
}

// ParseEnvironmentVariable parses an environment variable definition, in the form "key=value".
func ParseEnvironmentVariable(variable string) (IEnvironmentVariable, error) {
	elements := strings.SplitN(strings.TrimSpace(variable), "=", 2)
	if len(elements) < 2 {
		return nil, commonerrors.New(commonerrors.ErrInvalid, "invalid environment variable entry as not following key=value")
	}
	envvar := NewEnvironmentVariable(elements[0], elements[1])
	return envvar, envvar.Validate()
}

// ParseEnvironmentVariables parses a list of key=value entries, ignoring any invalid ones.
func ParseEnvironmentVariables(variables ...string) (envVars []IEnvironmentVariable) {
	for i := range variables {
		envVar, err := ParseEnvironmentVariable(variables[i])
		if err != nil {
			continue
		}
		envVars = append(envVars, envVar)
	}
	return
}

// NewEnvironmentVariable returns an environment variable defined by a key and a value.
func NewEnvironmentVariable(key, value string) IEnvironmentVariable {
	return &EnvVar{
		key:   key,
		value: value,
	}
}

// ValidateEnvironmentVariables validates a list of environment variables.
func ValidateEnvironmentVariables(vars ...IEnvironmentVariable) error {
	for i := range vars {
		if err := vars[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ParseDotEnvFile reads a `.env` file (https://github.com/bkeepers/dotenv) and returns the variables it defines.
func ParseDotEnvFile(filePath string) (envVars []IEnvironmentVariable, err error) {
	values, err := godotenv.Read(filePath)
	if err != nil {
		err = commonerrors.WrapError(commonerrors.ErrUnexpected, err, fmt.Sprintf("could not read dotenv file `%v`", filePath))
		return
	}
	for key, value := range values {
		envVars = append(envVars, NewEnvironmentVariable(key, value))
	}
	return
}
