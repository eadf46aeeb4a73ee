package network

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ParseError describes a textual listener or target specification that could not be resolved into
// an endpoint. It is always surfaced before any socket is created.
type ParseError struct {
	// Token is the offending input token, verbatim as supplied.
	Token string
	// Reason is a human-readable description of why the token was rejected.
	Reason string
}

// Error returns a human-consumable description of the parse error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("resolve: failed to parse address specification: token=%q reason=%s", e.Token, e.Reason)
}

// ParseEndpoint resolves a textual host:port address into an Endpoint. IPv6 addresses use the
// bracketed literal syntax, e.g. [::1]:4002. Interface suffixes are not part of the plain endpoint
// grammar; they are only meaningful on multicast listener specifications, so a suffix here is
// rejected.
func ParseEndpoint(addr string) (*Endpoint, error) {
	if strings.Contains(addr, "/") {
		return nil, &ParseError{
			Token:  addr,
			Reason: "an interface suffix is only valid on a multicast listener address",
		}
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, &ParseError{Token: addr, Reason: "address must be of the form host:port"}
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil, &ParseError{Token: addr, Reason: "invalid IP address literal"}
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return nil, &ParseError{Token: addr, Reason: "invalid port number"}
	}

	return &Endpoint{ip: ip, port: port}, nil
}

// ParseListenerSpec resolves a textual listener specification into a ListenerSpec. The
// specification is an endpoint optionally followed by a slash-delimited interface selection hint,
// which is only permitted when the endpoint is a multicast group: a local interface address for
// IPv4 groups (e.g. 224.10.10.10:4000/192.168.1.10), or an interface index or name for IPv6
// groups (e.g. [ff0e::1]:4000/2). Parsing is pure; interface names are resolved when the group is
// joined.
func ParseListenerSpec(spec string) (*ListenerSpec, error) {
	parts := strings.SplitN(spec, "/", 2)

	endpoint, err := ParseEndpoint(parts[0])
	if err != nil {
		return nil, err
	}

	listener := &ListenerSpec{endpoint: endpoint}
	if len(parts) == 1 {
		return listener, nil
	}

	suffix := parts[1]
	if suffix == "" {
		return nil, &ParseError{Token: spec, Reason: "empty interface suffix"}
	}

	if !endpoint.IsMulticast() {
		return nil, &ParseError{
			Token:  spec,
			Reason: "an interface suffix is only valid on a multicast listener address",
		}
	}

	switch endpoint.Family() {
	case IPv4:
		hint := net.ParseIP(suffix)
		if hint == nil || hint.To4() == nil {
			return nil, &ParseError{Token: spec, Reason: "invalid local interface address"}
		}

		// An unspecified local address selects the system default interface, same as no hint.
		if !hint.IsUnspecified() {
			listener.localAddr = hint
		}
	case IPv6:
		if index, err := strconv.Atoi(suffix); err == nil {
			if index < 0 {
				return nil, &ParseError{Token: spec, Reason: "invalid interface index"}
			}

			listener.ifIndex = index
		} else {
			listener.ifName = suffix
		}
	}

	return listener, nil
}

// ParseTargetList resolves an ordered list of textual target addresses into a TargetList,
// preserving input order. At least one target is required; duplicates are permitted.
func ParseTargetList(addrs []string) (TargetList, error) {
	if len(addrs) == 0 {
		return nil, &ParseError{Token: "", Reason: "at least one target address is required"}
	}

	targets := make(TargetList, 0, len(addrs))
	for _, addr := range addrs {
		endpoint, err := ParseEndpoint(addr)
		if err != nil {
			return nil, err
		}

		targets = append(targets, endpoint)
	}

	return targets, nil
}
