//go:build !linux && !darwin && !freebsd

package server

import "syscall"

// Without SO_REUSEPORT only a single worker can hold the port; remaining
// workers fail to bind and the supervisor keeps respawning them.
func reusePort(network, address string, c syscall.RawConn) error {
	return nil
}
