//go:build !windows

package server

import "os"

// cleanupSocket removes the Unix socket file.
// Returns an error if removal fails, unless the file doesn't exist.
func cleanupSocket(configured string) error {
	if err := os.Remove(socketPath(configured)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
