package config

// IServiceConfiguration defines a configuration object which can validate its entries.
type IServiceConfiguration interface {
	// Validate validates configuration entries.
	Validate() error
}
