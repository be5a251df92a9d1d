/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */

// Package idgen generates the unique identifiers qualifying invocation artefacts.
package idgen

import (
	"github.com/gofrs/uuid/v5"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
)

// GenerateUUID4 returns a random (version 4) UUID in canonical string form.
func GenerateUUID4() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", commonerrors.WrapError(commonerrors.ErrUnexpected, err, "could not generate a random uuid")
	}
	return id.String(), nil
}

// IsValidUUID states whether the string parses as a UUID of any version.
func IsValidUUID(candidate string) bool {
	_, err := uuid.FromString(candidate)
	return err == nil
}
