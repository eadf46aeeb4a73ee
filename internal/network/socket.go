package network

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// BindError describes a failure to create or bind a UDP socket, either the listener socket at
// startup or a per-family sending socket.
type BindError struct {
	// Network is the address family network token of the attempted bind.
	Network string
	// Addr is the local address of the attempted bind.
	Addr string
	// Err is the underlying socket error.
	Err error
}

// Error returns a human-consumable description of the bind error.
func (e *BindError) Error() string {
	return fmt.Sprintf("socket: failed to bind UDP socket: network=%s addr=%s err=%v", e.Network, e.Addr, e.Err)
}

// Unwrap returns the underlying socket error.
func (e *BindError) Unwrap() error {
	return e.Err
}

// controlReuseAddr enables SO_REUSEADDR on a socket before it is bound, so that repeated restarts
// of the process on the same listener port do not fail with an address-in-use error, and so that
// multiple multicast subscribers may share a port.
func controlReuseAddr(network string, address string, conn syscall.RawConn) error {
	var sockErr error

	if err := conn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}); err != nil {
		return err
	}

	return sockErr
}
