// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// probeGrace bounds the fallback read used for connections that do not
// expose a raw descriptor. Long enough for an in-flight synchronous pipe
// write to land, short enough that a pump call stays prompt.
const probeGrace = time.Millisecond

// readAvailable reads whatever bytes are already available into the free
// tail of the receive buffer without ever blocking a tick. Returns zero
// bytes when the peer is connected but quiet.
//
// Connections exposing their file descriptor are gated on a zero-timeout
// poll(2); everything else (net.Pipe in tests) falls back to a read under a
// short deadline where a timeout means "no data ready".
func (s *Server) readAvailable() (int, error) {
	dst := s.recvBuf[s.recvLen:]

	if sc, ok := s.conn.(syscall.Conn); ok {
		readable, err := pollReadable(sc)
		if err != nil || !readable {
			return 0, err
		}
		n, err := s.conn.Read(dst)
		if n <= 0 {
			return 0, networkError("Server.readAvailable", "connection lost", err)
		}
		return n, nil
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(probeGrace)); err != nil {
		return 0, networkError("Server.readAvailable", "failed to set read deadline", err)
	}
	n, err := s.conn.Read(dst)
	if resetErr := s.conn.SetReadDeadline(time.Time{}); resetErr != nil {
		return 0, networkError("Server.readAvailable", "failed to clear read deadline", resetErr)
	}
	if n > 0 {
		return n, nil
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return 0, nil
	}
	return 0, networkError("Server.readAvailable", "connection lost", err)
}

// pollReadable runs a zero-timeout poll(2) against the connection's raw
// descriptor.
func pollReadable(sc syscall.Conn) (bool, error) {
	raw, err := sc.SyscallConn()
	if err != nil {
		return false, networkError("pollReadable", "failed to access raw connection", err)
	}

	var readable bool
	var pollErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		for {
			n, err := unix.Poll(fds, 0)
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				pollErr = err
				return
			}
			// Hangup and error conditions count as readable so the
			// subsequent read surfaces the failure.
			readable = n > 0 && fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0
			return
		}
	})
	if ctrlErr != nil {
		return false, networkError("pollReadable", "failed to poll connection", ctrlErr)
	}
	if pollErr != nil {
		return false, networkError("pollReadable", "connection poll failed", pollErr)
	}
	return readable, nil
}
