// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"net"
)

const protocolVersion = "RFB 003.008\n"

const (
	securityTypeNone      = 1
	securityResultOK      = 0
	securityResultFailed  = 1
	rejectBadVersion      = "Unsupported version"
	rejectBadSecurityType = "Illegal auth type"
)

// Init binds the configured listen address and blocks until one client
// completes the RFB 3.8 handshake. Connections that fail any handshake step
// are sent a best-effort reason string, closed, and the listener keeps
// accepting; once a session establishes the listener is closed for good.
func (s *Server) Init() error {
	if s.conn != nil {
		return handshakeError("Server.Init", "session already established", nil)
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return networkError("Server.Init", "failed to bind listen address", err)
	}

	s.logger.Info("waiting for client",
		Field{Key: "address", Value: ln.Addr().String()},
		Field{Key: "desktop", Value: s.config.DesktopName})

	if s.config.OnListening != nil {
		s.config.OnListening(ln.Addr())
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			ln.Close()
			return networkError("Server.Init", "accept failed", err)
		}

		if err := s.handshake(conn); err != nil {
			s.logger.Warn("handshake failed",
				Field{Key: "remote", Value: conn.RemoteAddr().String()},
				Field{Key: "error", Value: err.Error()})
			s.metrics.clientRejected()
			conn.Close()
			continue
		}

		ln.Close()
		s.conn = conn
		s.encoding = EncodingRaw
		s.pendingUpdate = false
		s.havePalette = false
		s.logger.Info("client connected",
			Field{Key: "remote", Value: conn.RemoteAddr().String()})
		return nil
	}
}

// handshake runs the fixed RFB 3.8 sequence over a freshly accepted
// connection: version exchange, security negotiation (None only),
// ClientInit, ServerInit.
func (s *Server) handshake(conn net.Conn) error {
	if err := sendAll(conn, []byte(protocolVersion)); err != nil {
		return err
	}

	version := make([]byte, 12)
	if err := recvAll(conn, version); err != nil {
		return err
	}
	if err := s.validator.ValidateProtocolVersion(string(version)); err != nil {
		s.rejectVersion(conn, rejectBadVersion)
		return handshakeError("Server.handshake", "client protocol version rejected", err)
	}
	if string(version) != protocolVersion {
		s.rejectVersion(conn, rejectBadVersion)
		return handshakeError("Server.handshake",
			"client requested unsupported protocol version "+string(version[:11]), nil)
	}

	// Advertise exactly one security type: None.
	if err := sendAll(conn, []byte{1, securityTypeNone}); err != nil {
		return err
	}

	var chosen [1]byte
	if err := recvAll(conn, chosen[:]); err != nil {
		return err
	}
	if chosen[0] != securityTypeNone {
		s.rejectSecurity(conn, rejectBadSecurityType)
		return handshakeError("Server.handshake", "client chose unsupported security type", nil)
	}

	if err := sendAll(conn, appendU32(nil, securityResultOK)); err != nil {
		return err
	}

	// ClientInit shared flag: read and ignored, only one client is served.
	var shared [1]byte
	if err := recvAll(conn, shared[:]); err != nil {
		return err
	}

	return sendAll(conn, s.serverInit())
}

// serverInit builds the 28-byte ServerInit message: framebuffer geometry,
// the server's fixed pixel format, and the desktop name.
func (s *Server) serverInit() []byte {
	msg := make([]byte, 0, 24+len(s.config.DesktopName))
	msg = appendU16(msg, uint16(s.width))
	msg = appendU16(msg, uint16(s.height))
	msg = appendPixelFormat(msg, &serverPixelFormat)
	msg = appendU32(msg, uint32(len(s.config.DesktopName)))
	return append(msg, s.config.DesktopName...)
}

// rejectVersion sends the post-version failure form: a zero security-type
// count followed by a length-prefixed reason string.
func (s *Server) rejectVersion(conn net.Conn, reason string) {
	msg := appendU32([]byte{0}, uint32(len(reason)))
	msg = append(msg, reason...)
	_ = sendAll(conn, msg)
}

// rejectSecurity sends the post-selection failure form: a "failed"
// SecurityResult followed by a length-prefixed reason string.
func (s *Server) rejectSecurity(conn net.Conn, reason string) {
	msg := appendU32(nil, securityResultFailed)
	msg = appendU32(msg, uint32(len(reason)))
	msg = append(msg, reason...)
	_ = sendAll(conn, msg)
}
