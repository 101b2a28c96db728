package config

// TracingConfig controls OpenTelemetry spans for daemon RPCs and applied
// actions. Disabled installs a no-op provider.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Exporter    string  `mapstructure:"exporter" validate:"omitempty,oneof=stdout otlp"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}
