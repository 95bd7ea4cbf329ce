// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/retrodisplay/vncserver"
)

const tickRate = 35 // simulation ticks per second

func serveCmd() *cobra.Command {
	var (
		listenAddr  string
		metricsAddr string
		width       int
		height      int
		desktopName string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo framebuffer to one VNC client",
		Long: `Serve blocks until a VNC client connects, then drives a test-pattern
framebuffer at the simulation tick rate until the client disconnects.
Prometheus metrics and a health endpoint are exposed over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(listenAddr, metricsAddr, width, height, desktopName, verbose)
		},
	}

	cmd.Flags().StringVarP(&listenAddr, "listen", "l", ":5902", "VNC listen address")
	cmd.Flags().StringVarP(&metricsAddr, "metrics", "m", ":9102", "metrics HTTP listen address")
	cmd.Flags().IntVar(&width, "width", 320, "framebuffer width")
	cmd.Flags().IntVar(&height, "height", 200, "framebuffer height")
	cmd.Flags().StringVar(&desktopName, "name", "DOOM", "desktop name sent to the client")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func runServe(listenAddr, metricsAddr string, width, height int, desktopName string, verbose bool) error {
	logger := &vncserver.StandardLogger{}
	registry := prometheus.NewRegistry()
	metrics := vncserver.NewMetrics(registry, "vncserver")
	sink := vncserver.NewQueueSink()

	fatal := make(chan error, 1)
	server, err := vncserver.New(width, height,
		vncserver.WithListenAddress(listenAddr),
		vncserver.WithDesktopName(desktopName),
		vncserver.WithLogger(logger),
		vncserver.WithMetrics(metrics),
		vncserver.WithEventSink(sink),
		vncserver.WithTerminationHook(func(err error) {
			fatal <- err
		}),
	)
	if err != nil {
		return err
	}

	go serveMetrics(metricsAddr, registry, logger)

	if err := server.Init(); err != nil {
		return err
	}
	defer server.Exit()

	demo := newDemoScene(width, height)
	server.PreparePalette(demo.Palette())

	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	for {
		select {
		case err := <-fatal:
			fmt.Fprintf(os.Stderr, "session ended: %s\n", err)
			return nil
		case <-ticker.C:
			server.PumpMessages()
			demo.HandleEvents(sink)
			demo.Advance()
			if err := server.SendFrame(demo.Frame()); err != nil {
				return err
			}
		}
	}
}

func serveMetrics(addr string, registry *prometheus.Registry, logger vncserver.Logger) {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	logger.Info("metrics listening", vncserver.Field{Key: "address", Value: addr})
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("metrics server stopped", vncserver.Field{Key: "error", Value: err.Error()})
	}
}
