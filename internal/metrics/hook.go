package metrics

import (
	"net"
	"os"
	"strconv"
	"time"
)

// SocketLifecycleHook is a metrics hook interface for reporting events that occur while the relay
// sets up its sockets: binding the listener, joining a multicast group, and lazily opening a
// sending socket for an address family.
type SocketLifecycleHook interface {
	// EmitListenerBind reports the event that the listener socket was successfully bound.
	EmitListenerBind(addr net.Addr)

	// EmitGroupJoin reports the event that the listener socket joined a multicast group.
	EmitGroupJoin(group net.Addr)

	// EmitSenderOpen reports the event that a sending socket was opened for an address family.
	EmitSenderOpen(family string)
}

// RelayIOHook is a metrics hook interface for reporting I/O events on the relay's datagram path:
// receives on the listener socket and sends to individual forwarding targets.
type RelayIOHook interface {
	// EmitReceive reports a successful receive of a single datagram.
	EmitReceive(bytes int64, src net.Addr)

	// EmitReceiveError reports the event that a receive on the listener socket failed.
	EmitReceiveError()

	// EmitSend reports a successful send of a single datagram to a single target.
	EmitSend(latency time.Duration, bytes int64, target net.Addr)

	// EmitSendError reports the event that a send to a single target failed.
	EmitSendError(target net.Addr)
}

// RelayHook is a metrics hook interface for reporting events and latencies related to end-to-end
// fan-out of a single received datagram to all configured targets.
type RelayHook interface {
	// EmitForward reports a completed fan-out of one datagram to every configured target.
	EmitForward(latency time.Duration, bytes int64, targets int)

	// EmitError reports the occurrence of an error in the relay lifecycle that causes a datagram
	// to not be delivered to one or more targets.
	EmitError()
}

// AsyncStatsdSocketLifecycleHook is an implementation of SocketLifecycleHook that outputs metrics
// asynchronously to statsd.
type AsyncStatsdSocketLifecycleHook struct {
	client *StatsdClient
}

// AsyncStatsdRelayIOHook is an implementation of RelayIOHook that outputs metrics asynchronously
// to statsd.
type AsyncStatsdRelayIOHook struct {
	client *StatsdClient
}

// AsyncStatsdRelayHook is an implementation of RelayHook that outputs metrics asynchronously to
// statsd.
type AsyncStatsdRelayHook struct {
	client *StatsdClient
}

// NoopSocketLifecycleHook implements the SocketLifecycleHook interface but noops on all emissions.
type NoopSocketLifecycleHook struct{}

// NoopRelayIOHook implements the RelayIOHook interface but noops on all emissions.
type NoopRelayIOHook struct{}

// NoopRelayHook implements the RelayHook interface but noops on all emissions.
type NoopRelayHook struct{}

// NewAsyncStatsdSocketLifecycleHook creates a new hook with the specified statsd address, statsd
// sample rate, and application version.
func NewAsyncStatsdSocketLifecycleHook(addr string, sampleRate float32, version string) (SocketLifecycleHook, error) {
	client, err := statsdClientFactory(addr, sampleRate, version)
	if err != nil {
		return nil, err
	}

	return &AsyncStatsdSocketLifecycleHook{client}, nil
}

// EmitListenerBind statsd implementation
func (h *AsyncStatsdSocketLifecycleHook) EmitListenerBind(addr net.Addr) {
	go h.client.Count("event.listener.bind", 1, map[string]string{
		"addr": ipFromAddr(addr),
	})
}

// EmitGroupJoin statsd implementation
func (h *AsyncStatsdSocketLifecycleHook) EmitGroupJoin(group net.Addr) {
	go h.client.Count("event.listener.group_join", 1, map[string]string{
		"group": ipFromAddr(group),
	})
}

// EmitSenderOpen statsd implementation
func (h *AsyncStatsdSocketLifecycleHook) EmitSenderOpen(family string) {
	go h.client.Count("event.sender.open", 1, map[string]string{
		"family": family,
	})
}

// NewNoopSocketLifecycleHook creates a noop implementation of SocketLifecycleHook.
func NewNoopSocketLifecycleHook() SocketLifecycleHook {
	return &NoopSocketLifecycleHook{}
}

// EmitListenerBind noops.
func (h *NoopSocketLifecycleHook) EmitListenerBind(addr net.Addr) {}

// EmitGroupJoin noops.
func (h *NoopSocketLifecycleHook) EmitGroupJoin(group net.Addr) {}

// EmitSenderOpen noops.
func (h *NoopSocketLifecycleHook) EmitSenderOpen(family string) {}

// NewAsyncStatsdRelayIOHook creates a new hook with the specified statsd address, statsd sample
// rate, and application version.
func NewAsyncStatsdRelayIOHook(addr string, sampleRate float32, version string) (RelayIOHook, error) {
	client, err := statsdClientFactory(addr, sampleRate, version)
	if err != nil {
		return nil, err
	}

	return &AsyncStatsdRelayIOHook{client}, nil
}

// EmitReceive statsd implementation
func (h *AsyncStatsdRelayIOHook) EmitReceive(bytes int64, src net.Addr) {
	go func() {
		tags := map[string]string{
			"src": ipFromAddr(src),
		}

		h.client.Count("event.listener.recv", 1, tags)
		h.client.Size("size.listener.recv", bytes, tags)
	}()
}

// EmitReceiveError statsd implementation
func (h *AsyncStatsdRelayIOHook) EmitReceiveError() {
	go h.client.Count("event.listener.recv_error", 1, nil)
}

// EmitSend statsd implementation
func (h *AsyncStatsdRelayIOHook) EmitSend(latency time.Duration, bytes int64, target net.Addr) {
	go func() {
		tags := map[string]string{
			"target": ipFromAddr(target),
		}

		h.client.Count("event.target.send", 1, tags)
		h.client.Size("size.target.send", bytes, tags)

		if latency > 0 {
			h.client.Timing("latency.target.send", latency, tags)
		}
	}()
}

// EmitSendError statsd implementation
func (h *AsyncStatsdRelayIOHook) EmitSendError(target net.Addr) {
	go h.client.Count("event.target.send_error", 1, map[string]string{
		"target": ipFromAddr(target),
	})
}

// NewNoopRelayIOHook creates a noop implementation of RelayIOHook.
func NewNoopRelayIOHook() RelayIOHook {
	return &NoopRelayIOHook{}
}

// EmitReceive noops.
func (h *NoopRelayIOHook) EmitReceive(bytes int64, src net.Addr) {}

// EmitReceiveError noops.
func (h *NoopRelayIOHook) EmitReceiveError() {}

// EmitSend noops.
func (h *NoopRelayIOHook) EmitSend(latency time.Duration, bytes int64, target net.Addr) {}

// EmitSendError noops.
func (h *NoopRelayIOHook) EmitSendError(target net.Addr) {}

// NewAsyncStatsdRelayHook creates a new hook with the specified statsd address, statsd sample
// rate, and application version.
func NewAsyncStatsdRelayHook(addr string, sampleRate float32, version string) (RelayHook, error) {
	client, err := statsdClientFactory(addr, sampleRate, version)
	if err != nil {
		return nil, err
	}

	return &AsyncStatsdRelayHook{client}, nil
}

// EmitForward statsd implementation
func (h *AsyncStatsdRelayHook) EmitForward(latency time.Duration, bytes int64, targets int) {
	go func() {
		tags := map[string]string{
			"targets": strconv.Itoa(targets),
		}

		h.client.Count("event.relay.forward", 1, tags)
		h.client.Size("size.relay.datagram", bytes, tags)

		if latency > 0 {
			h.client.Timing("latency.relay.fanout", latency, tags)
		}
	}()
}

// EmitError statsd implementation
func (h *AsyncStatsdRelayHook) EmitError() {
	go h.client.Count("event.relay.error", 1, nil)
}

// NewNoopRelayHook creates a noop implementation of RelayHook.
func NewNoopRelayHook() RelayHook {
	return &NoopRelayHook{}
}

// EmitForward noops.
func (h *NoopRelayHook) EmitForward(latency time.Duration, bytes int64, targets int) {}

// EmitError noops.
func (h *NoopRelayHook) EmitError() {}

// statsdClientFactory creates a configured StatsdClient with reasonable defaults for the given
// statsd server address, sample rate, and application version.
func statsdClientFactory(addr string, sampleRate float32, version string) (*StatsdClient, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	defaultTags := map[string]string{
		"host":    hostname,
		"version": version,
	}

	return NewStatsdClient(addr, "udprelay", defaultTags, sampleRate)
}

// ipFromAddr returns the IP address from a full net.Addr, or null if unavailable.
func ipFromAddr(addr net.Addr) string {
	if udpAddr, ok := addr.(*net.UDPAddr); ok {
		return udpAddr.IP.String()
	}

	return "null"
}
