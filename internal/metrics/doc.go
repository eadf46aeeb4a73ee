// Package metrics contains abstractions for emission of metrics generated throughout the lifetime
// of the application. Currently, the only supported metrics output engine is statsd.
//
// Metrics are generated at various points in the lifecycle of a relayed datagram: when the
// listener socket receives it, when it is copied to each forwarding target, and when the fan-out
// for the datagram completes. The emissions in this package are therefore structured around the
// notion of hooks: a hook interface defines methods that the relay's logic routines invoke as
// those lifecycle points are reached. Implementations of hook interfaces actually output the
// metrics to a backend engine; this responsibility is decoupled from the semantics of "hooking"
// into relay logic.
package metrics
