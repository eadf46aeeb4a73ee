package network

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"udprelay/internal/metrics"
)

// MulticastJoinError describes a failure to join a multicast group on the listener socket, e.g. an
// interface hint that does not resolve to a usable interface.
type MulticastJoinError struct {
	// Group is the multicast group the listener attempted to join.
	Group string
	// Err is the underlying join error.
	Err error
}

// Error returns a human-consumable description of the join error.
func (e *MulticastJoinError) Error() string {
	return fmt.Sprintf("listener: failed to join multicast group: group=%s err=%v", e.Group, e.Err)
}

// Unwrap returns the underlying join error.
func (e *MulticastJoinError) Unwrap() error {
	return e.Err
}

// Listener binds and configures the receiving socket for a listener specification. Unicast
// listeners bind their own address directly; multicast listeners bind the wildcard address of
// their family, since multicast delivery is filtered by group membership rather than by bind
// address, and then join the group on the bound socket.
type Listener struct {
	spec   *ListenerSpec
	sxHook metrics.SocketLifecycleHook
}

// NewListener creates a listener for the specified address.
func NewListener(spec *ListenerSpec, sxHook metrics.SocketLifecycleHook) *Listener {
	return &Listener{spec, sxHook}
}

// Listen creates the receiving socket with address reuse enabled, binds it, and joins the
// multicast group when the listener address is one. The returned socket is ready for blocking
// receives. Bind failures surface as a BindError and group membership failures as a
// MulticastJoinError; in both cases no usable socket is returned.
func (l *Listener) Listen() (*net.UDPConn, error) {
	endpoint := l.spec.Endpoint()
	network := endpoint.Family().String()

	bindAddr := endpoint.UDPAddr()
	if endpoint.IsMulticast() {
		bindAddr = &net.UDPAddr{IP: wildcardIP(endpoint.Family()), Port: endpoint.Port()}
	}

	config := net.ListenConfig{Control: controlReuseAddr}

	conn, err := config.ListenPacket(context.Background(), network, bindAddr.String())
	if err != nil {
		return nil, &BindError{Network: network, Addr: bindAddr.String(), Err: err}
	}

	udpConn := conn.(*net.UDPConn)
	l.sxHook.EmitListenerBind(udpConn.LocalAddr())

	if endpoint.IsMulticast() {
		if err := l.joinGroup(udpConn); err != nil {
			udpConn.Close()
			return nil, err
		}

		l.sxHook.EmitGroupJoin(endpoint.UDPAddr())
	}

	return udpConn, nil
}

// joinGroup issues the group membership request for the listener's multicast group on the bound
// socket, resolving the interface selection hint for the group's address family.
func (l *Listener) joinGroup(conn *net.UDPConn) error {
	group := l.spec.Endpoint()

	switch group.Family() {
	case IPv4:
		ifi, err := interfaceByLocalAddr(l.spec.localAddr)
		if err != nil {
			return &MulticastJoinError{Group: group.String(), Err: err}
		}

		if err := ipv4.NewPacketConn(conn).JoinGroup(ifi, &net.UDPAddr{IP: group.IP()}); err != nil {
			return &MulticastJoinError{Group: group.String(), Err: err}
		}
	case IPv6:
		ifi, err := interfaceByIndexOrName(l.spec.ifIndex, l.spec.ifName)
		if err != nil {
			return &MulticastJoinError{Group: group.String(), Err: err}
		}

		if err := ipv6.NewPacketConn(conn).JoinGroup(ifi, &net.UDPAddr{IP: group.IP()}); err != nil {
			return &MulticastJoinError{Group: group.String(), Err: err}
		}
	}

	return nil
}

// interfaceByLocalAddr resolves an IPv4 interface selection hint to the network interface owning
// the hinted local address. A nil hint selects the system default interface.
func interfaceByLocalAddr(localAddr net.IP) (*net.Interface, error) {
	if localAddr == nil {
		return nil, nil
	}

	ifis, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for idx := range ifis {
		addrs, err := ifis[idx].Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP

			switch ifAddr := addr.(type) {
			case *net.IPNet:
				ip = ifAddr.IP
			case *net.IPAddr:
				ip = ifAddr.IP
			}

			if ip != nil && ip.Equal(localAddr) {
				return &ifis[idx], nil
			}
		}
	}

	return nil, fmt.Errorf("listener: no interface owns the local address: addr=%v", localAddr)
}

// interfaceByIndexOrName resolves an IPv6 interface selection hint. A name takes precedence over
// an index; index 0 with an empty name selects the system default interface.
func interfaceByIndexOrName(index int, name string) (*net.Interface, error) {
	if name != "" {
		return net.InterfaceByName(name)
	}

	if index > 0 {
		return net.InterfaceByIndex(index)
	}

	return nil, nil
}

// wildcardIP returns the unspecified address of the given family.
func wildcardIP(family Family) net.IP {
	if family == IPv4 {
		return net.IPv4zero
	}

	return net.IPv6unspecified
}
