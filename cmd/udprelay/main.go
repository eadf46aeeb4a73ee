package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/getsentry/raven-go"

	"udprelay/internal/log"
	"udprelay/internal/meta"
	"udprelay/internal/metrics"
	"udprelay/internal/network"
	"udprelay/internal/relay"
)

func main() {
	version := flag.Bool(
		"version",
		false,
		"print the compiled udprelay version SHA",
	)
	verbosity := flag.String(
		"verbosity",
		"error",
		"desired logging verbosity: one of error, warn, info, debug",
	)
	statsdAddr := flag.String(
		"statsd-addr",
		"",
		"address of a statsd server to receive metrics; metrics are disabled when empty",
	)
	statsdSampleRate := flag.Float64(
		"statsd-sample-rate",
		1.0,
		"sample rate for statsd metrics emission",
	)
	sentryDSN := flag.String(
		"sentry-dsn",
		os.Getenv("UDPRELAY_SENTRY_DSN"),
		"Sentry DSN to receive error reports; reporting is disabled when empty",
	)
	flag.Usage = usage
	flag.Parse()

	// Report the compiled version and exit
	if *version {
		fmt.Printf("udprelay/%s\n", meta.VersionSHA)
		return
	}

	// Logging configuration; default to log.Error verbosity
	level, _ := log.ParseLevel(*verbosity)
	logger := log.NewConsoleLogger(level)
	logger.Debug("main: initialized logger: level=%v", level)

	// Resolve the listener and target addresses before any socket is touched
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	listenerSpec, err := network.ParseListenerSpec(args[0])
	if err != nil {
		fatal(err)
	}

	targets, err := network.ParseTargetList(args[1:])
	if err != nil {
		fatal(err)
	}

	logger.Debug(
		"main: resolved addresses: listener=%s multicast=%t targets=%d",
		listenerSpec.Endpoint(),
		listenerSpec.Endpoint().IsMulticast(),
		len(targets),
	)

	// Configure error reporting
	if *sentryDSN != "" {
		raven.SetDSN(*sentryDSN)
		raven.SetRelease(meta.VersionSHA)
	}

	// Configure metrics reporting
	sxHook := metrics.NewNoopSocketLifecycleHook()
	ioHook := metrics.NewNoopRelayIOHook()
	relayHook := metrics.NewNoopRelayHook()

	if *statsdAddr != "" {
		logger.Info(
			"main: configuring statsd metrics reporting: addr=%s sample_rate=%f",
			*statsdAddr,
			*statsdSampleRate,
		)

		if sxHook, err = metrics.NewAsyncStatsdSocketLifecycleHook(
			*statsdAddr,
			float32(*statsdSampleRate),
			meta.VersionSHA,
		); err != nil {
			fatal(err)
		}

		if ioHook, err = metrics.NewAsyncStatsdRelayIOHook(
			*statsdAddr,
			float32(*statsdSampleRate),
			meta.VersionSHA,
		); err != nil {
			fatal(err)
		}

		if relayHook, err = metrics.NewAsyncStatsdRelayHook(
			*statsdAddr,
			float32(*statsdSampleRate),
			meta.VersionSHA,
		); err != nil {
			fatal(err)
		}
	} else {
		logger.Warn("main: no metrics output engine specified; disabling metrics")
	}

	// Bind the listener socket, joining the multicast group when the listener is one
	listener := network.NewListener(listenerSpec, sxHook)

	conn, err := listener.Listen()
	if err != nil {
		fatal(err)
	}

	logger.Info(
		"main: listening for datagrams: addr=%s multicast=%t",
		conn.LocalAddr(),
		listenerSpec.Endpoint().IsMulticast(),
	)

	// Relay indefinitely
	r := &relay.Relay{
		Conn:      conn,
		Targets:   targets,
		Senders:   network.NewSenderPool(sxHook),
		IOHook:    ioHook,
		RelayHook: relayHook,
		Logger:    logger,
	}

	logger.Info("main: relaying indefinitely: targets=%d", len(targets))

	if err := r.Run(); err != nil {
		fatal(err)
	}
}

// usage prints a usage summary with invocation examples, followed by the flag defaults.
func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `udprelay forwards UDP datagrams received on one address to one or more targets.

usage: udprelay [flags] listener_spec target_addr [target_addr ...]

The listener specification is an IPv4 or IPv6 address and port. A multicast
group address may carry an interface selection hint after a slash: a local
interface address for IPv4 groups, or an interface index or name for IPv6
groups.

examples:

  Relay a unicast stream to another local port:

    udprelay 127.0.0.1:4000 127.0.0.1:4001

  Fan a unicast stream out to IPv4 and IPv6 targets:

    udprelay 10.1.1.10:4000 127.0.0.1:4001 [::1]:4002

  Subscribe to an IPv4 multicast group on the default interface and forward
  to a remote address:

    udprelay 224.10.10.10:4000 10.1.1.11:4000

  Subscribe to an IPv4 multicast group through the interface owning a local
  address:

    udprelay 224.10.10.10:4000/192.168.1.10 127.0.0.1:4001

  Subscribe to an IPv6 multicast group through the interface with index 2:

    udprelay [ff05::1]:4000/2 [::1]:4001

flags:

`)
	flag.PrintDefaults()
}

// fatal prints an error to the error stream and exits with a non-zero status.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "udprelay: %v\n", err)
	os.Exit(1)
}
