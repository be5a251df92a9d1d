/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */

// Package config provides loading of service configuration from the environment (i.e. .env file, environment variables).
package config

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
)

const (
	// EnvVarSeparator is the separator used in environment variable names.
	EnvVarSeparator = "_"
	// DotEnvFile is the default dotenv file loaded into the environment if present.
	DotEnvFile         = ".env"
	configKeySeparator = "."
)

// Load loads the configuration from the environment (i.e. .env file, environment variables) and puts the entries into the configuration object configurationToSet.
// If not found in the environment, the values will come from the default values defined in defaultConfiguration.
// `envVarPrefix` defines a prefix that ENVIRONMENT variables will use. E.g. if your prefix is "elevated", the env registry will look for env variables that start with "ELEVATED_".
func Load(envVarPrefix string, configurationToSet IServiceConfiguration, defaultConfiguration IServiceConfiguration) error {
	return LoadFromViper(viper.New(), envVarPrefix, configurationToSet, defaultConfiguration)
}

// LoadFromViper is the same as `Load` but instead of creating a new viper session, reuses the one provided.
func LoadFromViper(viperSession *viper.Viper, envVarPrefix string, configurationToSet IServiceConfiguration, defaultConfiguration IServiceConfiguration) (err error) {
	// Load Defaults
	var defaults map[string]interface{}
	err = mapstructure.Decode(defaultConfiguration, &defaults)
	if err != nil {
		err = commonerrors.WrapError(commonerrors.ErrUnexpected, err, "could not decode the default configuration")
		return
	}
	err = viperSession.MergeConfigMap(defaults)
	if err != nil {
		err = commonerrors.WrapError(commonerrors.ErrUnexpected, err, "could not merge the default configuration")
		return
	}

	// Load .env file contents into environment, if it exists
	_ = godotenv.Load(DotEnvFile)

	// Load Environment variables
	viperSession.SetEnvPrefix(envVarPrefix)
	viperSession.AllowEmptyEnv(false)
	viperSession.AutomaticEnv()
	viperSession.SetEnvKeyReplacer(strings.NewReplacer(configKeySeparator, EnvVarSeparator))

	// Merge together all the sources and unmarshal into struct
	err = viperSession.Unmarshal(configurationToSet)
	if err != nil {
		err = commonerrors.WrapError(commonerrors.ErrMarshalling, err, "unable to decode config into struct")
		return
	}
	// Run validation
	err = configurationToSet.Validate()
	return
}
