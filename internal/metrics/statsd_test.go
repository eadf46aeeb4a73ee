package metrics

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewStatsdClient(t *testing.T) {
	// Start a mock statsd server; emissions land here over UDP
	serverAddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	assert.NoError(t, err)

	server, err := net.ListenUDP("udp", serverAddr)
	assert.NoError(t, err)
	defer server.Close()

	client, err := NewStatsdClient(server.LocalAddr().String(), "udprelay", map[string]string{"host": "test"}, 1.0)
	assert.NoError(t, err)

	assert.NoError(t, client.Count("event.test", 1, nil))
	assert.NoError(t, client.Timing("latency.test", time.Second, nil))

	// The wire datagram carries the prefixed metric name
	buffer := make([]byte, 512)
	server.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := server.ReadFromUDP(buffer)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(buffer[:n]), "udprelay.event.test"))
}

func TestFormatMetricNoTags(t *testing.T) {
	client := &StatsdClient{}

	assert.Equal(t, "event.relay.forward", client.formatMetric("event.relay.forward", nil))
}

func TestFormatMetricMergesDefaultTags(t *testing.T) {
	client := &StatsdClient{
		defaultTags: map[string]string{"host": "relay-1"},
	}

	metric := client.formatMetric("event.target.send", map[string]string{"target": "127.0.0.1"})

	parts := strings.Split(metric, ",")
	assert.Equal(t, "event.target.send", parts[0])
	assert.ElementsMatch(t, []string{"host=relay-1", "target=127.0.0.1"}, parts[1:])
}

func TestFormatMetricEscapesIncompatibleCharacters(t *testing.T) {
	client := &StatsdClient{}

	metric := client.formatMetric("event.target.send", map[string]string{"target": "[::1]:4002"})

	parts := strings.Split(metric, ",")
	assert.Equal(t, "event.target.send", parts[0])
	assert.Equal(t, []string{"target=%5B%3A%3A1%5D%3A4002"}, parts[1:])
}
