package config

import "time"

// DaemonConfig holds simulation daemon configuration
type DaemonConfig struct {
	// Unix socket path the gRPC server listens on
	SocketPath string `mapstructure:"socket_path" validate:"required"`

	// PID file location
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// World file loaded at startup (empty = wait for none, serve an empty world)
	WorldFile string `mapstructure:"world_file"`

	// Persist a snapshot after every applied batch
	AutoSnapshot bool `mapstructure:"auto_snapshot"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
