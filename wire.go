// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"net"
)

// sendAll writes the entire buffer to the connection, looping over short
// writes. A write that makes no progress or fails is a connection failure;
// there is no partial-success return, only all-bytes-sent or an error.
func sendAll(c net.Conn, buf []byte) error {
	offset := 0
	for offset < len(buf) {
		n, err := c.Write(buf[offset:])
		if err != nil {
			return networkError("sendAll", "connection write failed", err)
		}
		if n <= 0 {
			return networkError("sendAll", "connection made no write progress", nil)
		}
		offset += n
	}
	return nil
}

// recvAll reads exactly len(buf) bytes from the connection, looping over
// short reads. Like sendAll, any read returning zero bytes or an error is
// treated as a connection failure.
func recvAll(c net.Conn, buf []byte) error {
	offset := 0
	for offset < len(buf) {
		n, err := c.Read(buf[offset:])
		if err != nil {
			return networkError("recvAll", "connection read failed", err)
		}
		if n <= 0 {
			return networkError("recvAll", "connection made no read progress", nil)
		}
		offset += n
	}
	return nil
}

// Explicit byte-packing helpers keep the wire-format contracts testable in
// isolation from socket I/O. RFB multi-byte fields are big-endian; the
// stored-block framing inside the Tight container is little-endian.

// appendU16 appends a big-endian 16-bit value.
func appendU16(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

// appendU32 appends a big-endian 32-bit value.
func appendU32(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// appendS32 appends a big-endian signed 32-bit value.
func appendS32(dst []byte, v int32) []byte {
	return appendU32(dst, uint32(v))
}

// appendU16LE appends a little-endian 16-bit value.
func appendU16LE(dst []byte, v uint16) []byte {
	return append(dst, byte(v), byte(v>>8))
}

// readU16 decodes a big-endian 16-bit value.
func readU16(buf []byte) uint16 {
	return uint16(buf[0])<<8 | uint16(buf[1])
}

// readU32 decodes a big-endian 32-bit value.
func readU32(buf []byte) uint32 {
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
}
