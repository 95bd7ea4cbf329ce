// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vncserverd",
		Short: "Single-client VNC server for palette-indexed framebuffers",
		Long: `vncserverd serves one VNC client over RFB 3.8, exposing an 8-bit
palette-indexed framebuffer using the RAW or Tight encodings and
translating client keyboard and mouse input into host events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		websockifyCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
