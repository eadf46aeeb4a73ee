//go:generate go run golang.org/x/tools/cmd/stringer -type=Family -linecomment=true

package network

import (
	"net"
	"strconv"
)

// Family parametrizes the supported IP address families.
type Family int

const (
	// IPv4 describes the IPv4 address family.
	IPv4 Family = iota // udp4
	// IPv6 describes the IPv6 address family.
	IPv6 // udp6
)

// Endpoint is a single IP address and port pair identifying a network peer. An Endpoint is
// immutable after construction: its address family and its unicast versus multicast classification
// are derived from the address and never change.
type Endpoint struct {
	ip   net.IP
	port int
}

// IP returns the endpoint's IP address.
func (e *Endpoint) IP() net.IP {
	return e.ip
}

// Port returns the endpoint's port.
func (e *Endpoint) Port() int {
	return e.port
}

// Family returns the endpoint's address family.
func (e *Endpoint) Family() Family {
	if e.ip.To4() != nil {
		return IPv4
	}

	return IPv6
}

// IsMulticast indicates whether the endpoint's address lies in the multicast range of its family:
// 224.0.0.0/4 for IPv4 and ff00::/8 for IPv6.
func (e *Endpoint) IsMulticast() bool {
	return e.ip.IsMulticast()
}

// UDPAddr shapes the endpoint into a net.UDPAddr suitable for socket operations.
func (e *Endpoint) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: e.ip, Port: e.port}
}

// String returns the endpoint in the same host:port form it was parsed from, with IPv6 addresses
// bracketed.
func (e *Endpoint) String() string {
	return net.JoinHostPort(e.ip.String(), strconv.Itoa(e.port))
}

// ListenerSpec describes where the relay receives datagrams: one endpoint, which may be a unicast
// address or a multicast group, plus an optional interface selection hint used only for multicast
// group membership. The hint shape differs by family: IPv4 groups are joined through the interface
// owning a local address, while IPv6 groups are joined through an interface index or name.
type ListenerSpec struct {
	endpoint *Endpoint

	// IPv4 join hint; nil selects the system default interface.
	localAddr net.IP

	// IPv6 join hints; index 0 with an empty name selects the system default interface. The name
	// is resolved to an interface at join time, not at parse time.
	ifIndex int
	ifName  string
}

// Endpoint returns the address the listener receives on.
func (s *ListenerSpec) Endpoint() *Endpoint {
	return s.endpoint
}

// TargetList is an ordered sequence of forwarding targets. The order is the order the targets were
// given on input, duplicates are permitted, and each entry receives an independent send per
// datagram. Targets may mix address families freely.
type TargetList []*Endpoint
