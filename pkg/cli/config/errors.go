package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig  = goerr.New("invalid configuration")
	ErrMissingSetting = goerr.New("required setting is missing")
)

// Context keys for error values
const (
	FlagKey    = "flag"
	BackendKey = "backend"
)
