package server

import (
	"os"
	"path/filepath"

	"github.com/loomui/loom/common"
)

// socketPath resolves the Unix socket path. The LOOM_SOCKET_PATH env
// var overrides the configured path; the temp-dir default applies when
// neither is set.
func socketPath(configured string) string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	if configured != "" {
		return configured
	}
	return filepath.Join(os.TempDir(), "loomd.sock")
}
