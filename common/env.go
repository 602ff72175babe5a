// Package common provides shared types and constants used across the loom
// client-daemon communication layer.
package common

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for a custom socket path.
	SocketPathEnv = "LOOM_SOCKET_PATH"

	// TCPPortEnv is the environment variable for a custom TCP port.
	TCPPortEnv = "LOOM_TCP_PORT"

	// ForceTCPEnv is the environment variable to force TCP connections.
	ForceTCPEnv = "LOOM_FORCE_TCP"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "LOOM_DEBUG"

	// PipeNameEnv is the environment variable for a custom Windows pipe name.
	PipeNameEnv = "LOOM_PIPE_NAME"

	// ConfigPathEnv is the environment variable for a custom config file path.
	ConfigPathEnv = "LOOM_CONFIG"
)
