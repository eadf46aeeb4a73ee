package network

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEndpointIPv4Unicast(t *testing.T) {
	endpoint, err := ParseEndpoint("10.1.1.10:4000")
	assert.NoError(t, err)
	assert.Equal(t, IPv4, endpoint.Family())
	assert.False(t, endpoint.IsMulticast())
	assert.Equal(t, 4000, endpoint.Port())
	assert.True(t, endpoint.IP().Equal(net.ParseIP("10.1.1.10")))
	assert.Equal(t, "10.1.1.10:4000", endpoint.String())
}

func TestParseEndpointIPv6Unicast(t *testing.T) {
	endpoint, err := ParseEndpoint("[2001::1]:4000")
	assert.NoError(t, err)
	assert.Equal(t, IPv6, endpoint.Family())
	assert.False(t, endpoint.IsMulticast())
	assert.Equal(t, 4000, endpoint.Port())
	assert.Equal(t, "[2001::1]:4000", endpoint.String())
}

func TestParseEndpointInvalid(t *testing.T) {
	invalid := []string{
		"",
		"127.0.0.1",
		"127.0.0.1:",
		"127.0.0.1:port",
		"127.0.0.1:65536",
		"127.0.0.1:-1",
		"300.0.0.1:4000",
		"ff0e::1:4000",
		"[ff0e::1]",
		"relay.example.com:4000",
	}

	for _, addr := range invalid {
		_, err := ParseEndpoint(addr)
		assert.Error(t, err, "address %q should be rejected", addr)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr), "address %q should fail with a ParseError", addr)
	}
}

func TestParseEndpointRejectsInterfaceSuffix(t *testing.T) {
	_, err := ParseEndpoint("224.10.10.10:4000/192.168.1.10")
	assert.Error(t, err)

	_, err = ParseEndpoint("127.0.0.1:4001/2")
	assert.Error(t, err)
}

func TestEndpointMulticastBoundaries(t *testing.T) {
	cases := []struct {
		addr      string
		multicast bool
	}{
		{"223.255.255.255:4000", false},
		{"224.0.0.0:4000", true},
		{"239.255.255.255:4000", true},
		{"240.0.0.0:4000", false},
		{"[feff::1]:4000", false},
		{"[ff00::]:4000", true},
		{"[ff0e::1]:4000", true},
		{"[ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff]:4000", true},
		{"[fe80::1]:4000", false},
	}

	for _, tc := range cases {
		endpoint, err := ParseEndpoint(tc.addr)
		assert.NoError(t, err, "address %q should parse", tc.addr)
		assert.Equal(t, tc.multicast, endpoint.IsMulticast(), "classification of %q", tc.addr)
	}
}

func TestParseListenerSpecUnicast(t *testing.T) {
	spec, err := ParseListenerSpec("10.1.1.10:4000")
	assert.NoError(t, err)
	assert.False(t, spec.Endpoint().IsMulticast())
	assert.Nil(t, spec.localAddr)
}

func TestParseListenerSpecIPv4MulticastDefaultInterface(t *testing.T) {
	spec, err := ParseListenerSpec("224.10.10.10:4000")
	assert.NoError(t, err)
	assert.True(t, spec.Endpoint().IsMulticast())
	assert.Equal(t, IPv4, spec.Endpoint().Family())
	assert.Nil(t, spec.localAddr)
}

func TestParseListenerSpecIPv4MulticastLocalAddr(t *testing.T) {
	spec, err := ParseListenerSpec("224.10.10.10:4000/192.168.1.10")
	assert.NoError(t, err)
	assert.True(t, spec.localAddr.Equal(net.ParseIP("192.168.1.10")))
}

func TestParseListenerSpecIPv4MulticastUnspecifiedLocalAddr(t *testing.T) {
	// An unspecified local address is the same as omitting the hint
	spec, err := ParseListenerSpec("224.10.10.10:4000/0.0.0.0")
	assert.NoError(t, err)
	assert.Nil(t, spec.localAddr)
}

func TestParseListenerSpecIPv6MulticastDefaultInterface(t *testing.T) {
	spec, err := ParseListenerSpec("[ff0e::1]:4000")
	assert.NoError(t, err)
	assert.True(t, spec.Endpoint().IsMulticast())
	assert.Equal(t, IPv6, spec.Endpoint().Family())
	assert.Equal(t, 0, spec.ifIndex)
	assert.Equal(t, "", spec.ifName)
}

func TestParseListenerSpecIPv6MulticastInterfaceIndex(t *testing.T) {
	spec, err := ParseListenerSpec("[ff0e::1]:4000/2")
	assert.NoError(t, err)
	assert.Equal(t, 2, spec.ifIndex)
	assert.Equal(t, "", spec.ifName)
}

func TestParseListenerSpecIPv6MulticastInterfaceName(t *testing.T) {
	spec, err := ParseListenerSpec("[ff0e::1]:4000/eth0")
	assert.NoError(t, err)
	assert.Equal(t, "eth0", spec.ifName)
	assert.Equal(t, 0, spec.ifIndex)
}

func TestParseListenerSpecSuffixOnUnicastRejected(t *testing.T) {
	_, err := ParseListenerSpec("10.1.1.10:4000/192.168.1.10")
	assert.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseListenerSpecInvalidSuffix(t *testing.T) {
	// IPv4 groups take a local interface address, not an index
	_, err := ParseListenerSpec("224.10.10.10:4000/2")
	assert.Error(t, err)

	// IPv4 groups take an IPv4 local address
	_, err = ParseListenerSpec("224.10.10.10:4000/::1")
	assert.Error(t, err)

	_, err = ParseListenerSpec("224.10.10.10:4000/")
	assert.Error(t, err)

	_, err = ParseListenerSpec("[ff0e::1]:4000/-3")
	assert.Error(t, err)
}

func TestParseTargetListOrderPreserved(t *testing.T) {
	targets, err := ParseTargetList([]string{"127.0.0.1:4001", "[::1]:4002", "10.1.1.11:4000"})
	assert.NoError(t, err)
	assert.Len(t, targets, 3)
	assert.Equal(t, "127.0.0.1:4001", targets[0].String())
	assert.Equal(t, "[::1]:4002", targets[1].String())
	assert.Equal(t, "10.1.1.11:4000", targets[2].String())
}

func TestParseTargetListDuplicatesPermitted(t *testing.T) {
	targets, err := ParseTargetList([]string{"127.0.0.1:4001", "127.0.0.1:4001"})
	assert.NoError(t, err)
	assert.Len(t, targets, 2)
}

func TestParseTargetListEmpty(t *testing.T) {
	_, err := ParseTargetList(nil)
	assert.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseTargetListRejectsInterfaceSuffix(t *testing.T) {
	_, err := ParseTargetList([]string{"224.10.10.10:4000/192.168.1.10"})
	assert.Error(t, err)
}

func TestParseTargetListMulticastTargetAllowed(t *testing.T) {
	targets, err := ParseTargetList([]string{"224.10.10.10:4000"})
	assert.NoError(t, err)
	assert.True(t, targets[0].IsMulticast())
}
