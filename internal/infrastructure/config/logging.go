package config

// LoggingConfig configures the process logger and whether per-run action
// entries are also written to the action_logs table
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`

	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	// IncludeCaller adds source file:line to each record
	IncludeCaller bool `mapstructure:"include_caller"`

	PersistActions bool `mapstructure:"persist_actions"`
}
