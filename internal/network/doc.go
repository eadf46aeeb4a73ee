// Package network contains the addressing and socket primitives behind the relay. It resolves
// textual address specifications into typed endpoints, classifies them by address family and by
// unicast versus multicast, binds and configures the receiving socket (including multicast group
// membership), and lazily provisions the per-family sending sockets used for fan-out.
package network
