// Package relay implements the datagram forwarding engine. It owns the receive path on the bound
// listener socket and the fan-out of every inbound datagram to every configured target, in input
// order, through one lazily created sending socket per address family. The engine is deliberately
// single-threaded: the blocking receive is its only suspension point, and each datagram is
// forwarded to all targets synchronously before the next receive, so delivery order from the
// single source is preserved per target.
package relay
