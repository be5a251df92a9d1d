// Package environment defines objects describing environment variables to be set for the commands to run.
package environment

import (
	"encoding"
	"fmt"
)

// IEnvironmentVariable defines an environment variable to be set for the commands to run.
type IEnvironmentVariable interface {
	encoding.TextMarshaler
	encoding.TextUnmarshaler
	fmt.Stringer
	// GetKey returns the variable key.
	GetKey() string
	// GetValue returns the variable value.
	GetValue() string
	// Validate checks whether the variable value is correctly defined
	Validate() error
	// Equal states whether two environment variables are equal or not.
	Equal(v IEnvironmentVariable) bool
}
