//go:build !windows

package loomcli

import (
	"os"
	"path/filepath"

	"github.com/loomui/loom/common"
)

func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "loomd.sock")
}
