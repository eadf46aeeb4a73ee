package network

import (
	"net"

	"udprelay/internal/metrics"
)

// SenderPool lazily provisions the sending sockets used for fan-out, holding at most one socket
// per address family. The socket for a family is created the first time a target of that family is
// forwarded to, binds an ephemeral local port on the wildcard address, and is reused for every
// subsequent send to targets of that family. Reusing one socket per family keeps the descriptor
// count constant regardless of how many targets share a family.
//
// A SenderPool is not safe for concurrent use; the relay loop drives it from a single goroutine.
type SenderPool struct {
	conns  map[Family]*net.UDPConn
	sxHook metrics.SocketLifecycleHook
}

// NewSenderPool creates an empty sender pool. No sockets are created until the first call to Conn.
func NewSenderPool(sxHook metrics.SocketLifecycleHook) *SenderPool {
	return &SenderPool{
		conns:  make(map[Family]*net.UDPConn),
		sxHook: sxHook,
	}
}

// Conn returns the sending socket for the given address family, creating it on first use. A
// creation failure surfaces as a BindError and leaves the pool unchanged, so a later call may
// retry the creation.
func (p *SenderPool) Conn(family Family) (*net.UDPConn, error) {
	if conn, ok := p.conns[family]; ok {
		return conn, nil
	}

	conn, err := net.ListenUDP(family.String(), nil)
	if err != nil {
		return nil, &BindError{Network: family.String(), Addr: ":0", Err: err}
	}

	p.conns[family] = conn
	p.sxHook.EmitSenderOpen(family.String())

	return conn, nil
}

// Close closes every sending socket the pool has created. The relay itself never tears its pool
// down; this exists for tests and for symmetry with the listener socket.
func (p *SenderPool) Close() {
	for family, conn := range p.conns {
		conn.Close()
		delete(p.conns, family)
	}
}
