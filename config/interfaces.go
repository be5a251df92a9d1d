package config

// IServiceConfiguration defines a typical service configuration.
type IServiceConfiguration interface {
	// Validate validates configuration entries.
	Validate() error
}
