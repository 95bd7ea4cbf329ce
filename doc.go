// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

// Package vncserver implements a single-client VNC (RFB, RFC 6143) server
// that stands in for a local display and input stack.
//
// The server consumes an 8-bit palette-indexed framebuffer and a 256-entry
// RGB palette from its host, and emits discrete keyboard and mouse events
// back into the host's input sink. Exactly one client is served per process:
// Init blocks until a viewer connects and completes the handshake, after
// which the listener is closed for good.
//
// # Basic Usage
//
//	srv, err := vncserver.New(320, 200,
//		vncserver.WithDesktopName("DOOM"),
//		vncserver.WithEventSink(sink),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := srv.Init(); err != nil { // blocks until a viewer attaches
//		log.Fatal(err)
//	}
//	defer srv.Exit()
//
//	for running {
//		srv.PumpMessages() // drain and translate client input
//		render(frame)
//		srv.PreparePalette(palette)
//		srv.SendFrame(frame) // only sent when the client asked for one
//	}
//
// # Encodings
//
// Two update encodings are supported: Raw (32-bit BGRX truecolor resolved
// through the server palette) and a minimal Tight variant that wraps the raw
// palette indices in a valid but uncompressed zlib container. Tight is
// selected automatically when the client offers it in SetEncodings.
//
// # Error Handling
//
// Handshake rejections drop the offending client and keep listening; any
// transport failure after the handshake is fatal to the session and invokes
// the configured termination hook:
//
//	if vncserver.IsServerError(err, vncserver.ErrNetwork) {
//		log.Printf("viewer disconnected: %v", err)
//	}
package vncserver
