package config

import "time"

// Overrides carries command-line values. A nil field was not set by the
// user and leaves the file or default value alone.
type Overrides struct {
	Server    *string
	Timeout   *time.Duration
	Debounce  *time.Duration
	LogLevel  *string
	LogFile   *string
	OutputDir *string
}

// Apply copies every set override into cfg.
func (o *Overrides) Apply(cfg *Config) {
	if o.Server != nil {
		cfg.Server.URL = *o.Server
	}
	if o.Timeout != nil && *o.Timeout > 0 {
		cfg.Server.Timeout = Duration{*o.Timeout}
	}
	if o.Debounce != nil && *o.Debounce > 0 {
		cfg.Preview.Debounce = Duration{*o.Debounce}
	}
	if o.LogLevel != nil && *o.LogLevel != "" {
		cfg.Logger.Level = *o.LogLevel
	}
	if o.LogFile != nil {
		cfg.Logger.File = *o.LogFile
	}
	if o.OutputDir != nil && *o.OutputDir != "" {
		cfg.Output.Dir = *o.OutputDir
	}
}
