package relay

import (
	"fmt"
	"net"

	"github.com/getsentry/raven-go"
	"lib.kevinlin.info/aperture/lib"

	"udprelay/internal/log"
	"udprelay/internal/metrics"
	"udprelay/internal/network"
)

// MaxDatagramSize is the largest UDP payload the relay can receive in one datagram: the 65535-byte
// IP packet limit less the 20-byte IP header and the 8-byte UDP header.
const MaxDatagramSize = 65507

// Relay copies every datagram received on a bound listener socket to each configured target. It is
// created once at startup and lives for the remainder of the process; there is no teardown beyond
// OS-level socket closure on exit.
type Relay struct {
	// Conn is the bound receiving socket, as produced by a network.Listener.
	Conn *net.UDPConn
	// Targets are the forwarding destinations, in input order.
	Targets network.TargetList
	// Senders provisions the per-family sending sockets.
	Senders *network.SenderPool
	// IOHook is invoked for receive and per-target send events.
	IOHook metrics.RelayIOHook
	// RelayHook is invoked for end-to-end fan-out events and relay errors.
	RelayHook metrics.RelayHook
	// Logger receives diagnostic output.
	Logger log.Logger
	// Opts holds optional tuning parameters.
	Opts RelayOpts
}

// RelayOpts formalizes relay configuration options.
type RelayOpts struct {
	// BufferSize is the size of the receive buffer in bytes. Datagrams larger than the buffer are
	// truncated by the socket layer, so this should normally be left at its default, which is
	// MaxDatagramSize.
	BufferSize int
}

// SendError describes a failure to deliver one datagram to one specific target. It is non-fatal:
// the failure is isolated to that target for that datagram, and forwarding continues for the
// remaining targets and for subsequent datagrams.
type SendError struct {
	// Target is the destination whose delivery failed.
	Target *network.Endpoint
	// Err is the underlying send or socket creation error.
	Err error
}

// Error returns a human-consumable description of the send error.
func (e *SendError) Error() string {
	return fmt.Sprintf("relay: failed to forward datagram to target: target=%s err=%v", e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *SendError) Unwrap() error {
	return e.Err
}

// ReceiveError describes a failure of the blocking receive on the listener socket. It is fatal:
// a UDP receiving socket does not meaningfully disconnect, so an error here indicates a deeper
// resource problem that is not worth retrying silently.
type ReceiveError struct {
	// Err is the underlying receive error.
	Err error
}

// Error returns a human-consumable description of the receive error.
func (e *ReceiveError) Error() string {
	return fmt.Sprintf("relay: failed to receive datagram on listener socket: err=%v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ReceiveError) Unwrap() error {
	return e.Err
}

// Run executes the blocking receive and fan-out loop. Each iteration blocks until a datagram
// arrives on the listener socket, then synchronously copies the exact received byte range,
// zero-length datagrams included, to every target in input order. Run returns only when a receive
// fails, and always with a non-nil ReceiveError; per-target send failures are consumed internally
// and do not end the loop.
func (r *Relay) Run() error {
	// Sane option defaults
	size := r.Opts.BufferSize
	if size <= 0 {
		size = MaxDatagramSize
	}

	buffer := make([]byte, size)

	for {
		n, src, err := r.Conn.ReadFromUDP(buffer)
		if err != nil {
			r.IOHook.EmitReceiveError()

			recvErr := &ReceiveError{Err: err}
			r.consumeError(recvErr)

			return recvErr
		}

		r.IOHook.EmitReceive(int64(n), src)
		r.Logger.Debug("relay: received datagram: bytes=%d src=%s", n, src)

		r.forward(buffer[:n])
	}
}

// forward copies one received datagram to every target in input order. Targets fail
// independently: a send failure, including a failure to lazily create the sending socket for the
// target's family, is consumed and the remaining targets are still attempted.
func (r *Relay) forward(datagram []byte) {
	fanoutTimer := lib.NewStopwatch()

	for _, target := range r.Targets {
		sendTimer := lib.NewStopwatch()

		conn, err := r.Senders.Conn(target.Family())
		if err != nil {
			r.IOHook.EmitSendError(target.UDPAddr())
			r.consumeError(&SendError{Target: target, Err: err})
			continue
		}

		sent, err := conn.WriteToUDP(datagram, target.UDPAddr())
		if err != nil {
			r.IOHook.EmitSendError(target.UDPAddr())
			r.consumeError(&SendError{Target: target, Err: err})
			continue
		}

		if sent != len(datagram) {
			r.IOHook.EmitSendError(target.UDPAddr())
			r.consumeError(&SendError{
				Target: target,
				Err:    fmt.Errorf("short write: expected=%d actual=%d", len(datagram), sent),
			})
			continue
		}

		r.IOHook.EmitSend(sendTimer.Elapsed(), int64(sent), target.UDPAddr())
		r.Logger.Debug("relay: forwarded datagram: target=%s bytes=%d", target, sent)
	}

	r.RelayHook.EmitForward(fanoutTimer.Elapsed(), int64(len(datagram)), len(r.Targets))
}

// consumeError logs and reports a relay error.
func (r *Relay) consumeError(err error) {
	r.Logger.Error("%v", err)
	r.RelayHook.EmitError()

	var tags map[string]string
	if sendErr, ok := err.(*SendError); ok {
		tags = map[string]string{
			"target": sendErr.Target.String(),
			"family": sendErr.Target.Family().String(),
		}
	}

	raven.CaptureError(err, tags)
}
