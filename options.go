// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import "net"

// ServerConfig holds configuration for a VNC server instance.
type ServerConfig struct {
	// ListenAddress is the TCP address the server binds while waiting for
	// a client. Defaults to ":5902".
	ListenAddress string

	// DesktopName is advertised to the client in the ServerInit message.
	// Defaults to "DOOM".
	DesktopName string

	// Logger receives structured log output. Defaults to a no-op logger.
	Logger Logger

	// Metrics collects protocol counters. Nil disables collection.
	Metrics *Metrics

	// Sink receives translated keyboard and mouse events. Defaults to a
	// sink that discards everything.
	Sink EventSink

	// OnListening is invoked with the bound listener address before the
	// server starts accepting. Useful when binding port 0.
	OnListening func(net.Addr)

	// OnFatal is invoked once after an unrecoverable transport or protocol
	// failure tears the session down.
	OnFatal func(error)
}

// ServerOption represents a functional option for configuring a VNC server.
type ServerOption func(*ServerConfig)

// WithListenAddress sets the TCP address to listen on.
func WithListenAddress(addr string) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.ListenAddress = addr
	}
}

// WithDesktopName sets the desktop name sent in the ServerInit message.
func WithDesktopName(name string) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.DesktopName = name
	}
}

// WithLogger sets the logger for server operations.
func WithLogger(logger Logger) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.Logger = logger
	}
}

// WithMetrics sets the metrics collector for protocol counters.
func WithMetrics(metrics *Metrics) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.Metrics = metrics
	}
}

// WithEventSink sets the destination for translated input events.
func WithEventSink(sink EventSink) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.Sink = sink
	}
}

// WithListenCallback sets a callback invoked with the bound listener
// address before the server starts accepting connections.
func WithListenCallback(fn func(net.Addr)) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.OnListening = fn
	}
}

// WithTerminationHook sets a callback invoked after a fatal transport or
// protocol error has torn the session down.
func WithTerminationHook(fn func(error)) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.OnFatal = fn
	}
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddress: ":5902",
		DesktopName:   "DOOM",
		Logger:        &NoOpLogger{},
		Sink:          discardSink{},
	}
}
