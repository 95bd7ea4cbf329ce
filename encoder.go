// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

// The outbound frame encoders. Both paths share the FramebufferUpdate
// rectangle header and differ only in the rectangle payload: Raw resolves
// every palette index to a 32-bit BGRX pixel, Tight ships the indices
// themselves behind a palette filter inside a hand-built zlib container.
// Everything here is pure: bytes in, bytes out, no socket anywhere.

// Server-to-client message types, RFC 6143 Section 7.6.
const msgFramebufferUpdate = 0

// Tight compression-control layout for the one mode this server emits:
// reset stream 0, basic compression on stream 0, explicit filter byte.
const (
	tightResetStream0   = 0x01
	tightExplicitFilter = 0x40
	tightFilterPalette  = 0x01
)

// Stored DEFLATE blocks carry at most 65535 bytes (RFC 1951 3.2.4).
const maxStoredBlock = 65535

// adlerModulus is the largest prime below 65536 (RFC 1950 Section 8.2).
const adlerModulus = 65521

// appendUpdateHeader appends the FramebufferUpdate message header plus the
// single full-frame rectangle header used by both encodings.
func appendUpdateHeader(dst []byte, width, height uint16, encoding int32) []byte {
	dst = append(dst, msgFramebufferUpdate, 0) // message type, padding
	dst = appendU16(dst, 1)                    // rectangle count
	dst = appendU16(dst, 0)                    // x
	dst = appendU16(dst, 0)                    // y
	dst = appendU16(dst, width)
	dst = appendU16(dst, height)
	return appendS32(dst, encoding)
}

// appendRawRect appends the Raw rectangle payload: each palette index
// resolved to the advertised 32-bit little-endian truecolor layout, so the
// wire bytes per pixel are blue, green, red, padding.
func appendRawRect(dst []byte, frame []byte, pal *Palette) []byte {
	for _, index := range frame {
		c := pal[index]
		dst = append(dst, c.B, c.G, c.R, 0)
	}
	return dst
}

// appendTightRect appends the Tight rectangle payload: compression control,
// palette filter with all 256 entries, then the compact-length-prefixed zlib
// container holding the raw palette indices.
func appendTightRect(dst []byte, frame []byte, pal *Palette) []byte {
	dst = append(dst, tightResetStream0|tightExplicitFilter)
	dst = append(dst, tightFilterPalette)

	// Palette size byte holds count-1; Tight palette entries are plain RGB
	// triples with no endian scaling, unlike the Raw pixel layout.
	dst = append(dst, PaletteSize-1)
	for _, c := range pal {
		dst = append(dst, c.R, c.G, c.B)
	}

	dst = appendCompactLength(dst, zlibStoredSize(len(frame)))
	return appendZlibStored(dst, frame)
}

// appendCompactLength appends Tight's variable-length length encoding:
// seven bits per byte, low bits first, high bit flagging a continuation.
func appendCompactLength(dst []byte, n int) []byte {
	switch {
	case n < 0x80:
		return append(dst, byte(n))
	case n < 0x4000:
		return append(dst, byte(n&0x7f)|0x80, byte(n>>7))
	default:
		return append(dst, byte(n&0x7f)|0x80, byte(n>>7)|0x80, byte(n>>14))
	}
}

// storedBlockCount returns the number of stored DEFLATE blocks needed for n
// payload bytes. Zero-length payloads still need one (empty, final) block.
func storedBlockCount(n int) int {
	if n == 0 {
		return 1
	}
	return (n + maxStoredBlock - 1) / maxStoredBlock
}

// zlibStoredSize returns the exact size of the container appendZlibStored
// produces for n payload bytes: 2-byte zlib header, 5 bytes of framing per
// stored block, the payload, and the 4-byte Adler-32 trailer.
func zlibStoredSize(n int) int {
	return 2 + storedBlockCount(n)*5 + n + 4
}

// appendZlibStored appends a valid zlib stream (RFC 1950) that performs no
// compression: the payload is framed verbatim in stored DEFLATE blocks
// (RFC 1951). Any zlib-compatible decoder inflates it back to data byte for
// byte, which keeps the Tight path wire-compatible without dragging in a
// compression library.
func appendZlibStored(dst []byte, data []byte) []byte {
	// CMF 0x78: DEFLATE with a 32K window. FLG 0x01: no preset dictionary,
	// fastest-compression hint, and (CMF<<8|FLG) divisible by 31.
	dst = append(dst, 0x78, 0x01)

	rest := data
	for {
		chunk := rest
		if len(chunk) > maxStoredBlock {
			chunk = chunk[:maxStoredBlock]
		}
		rest = rest[len(chunk):]

		final := byte(0)
		if len(rest) == 0 {
			final = 1
		}

		// Stored block: final flag in bit 0, type 00 in bits 1-2, then the
		// little-endian length and its one's complement.
		dst = append(dst, final)
		dst = appendU16LE(dst, uint16(len(chunk)))
		dst = appendU16LE(dst, ^uint16(len(chunk)))
		dst = append(dst, chunk...)

		if len(rest) == 0 {
			break
		}
	}

	return appendU32(dst, adler32Sum(data))
}

// adler32Sum computes the Adler-32 checksum of data per RFC 1950: s1 starts
// at 1, s2 at 0, both accumulated modulo 65521, emitted as s2 in the high
// half and s1 in the low half.
func adler32Sum(data []byte) uint32 {
	s1 := uint32(1)
	s2 := uint32(0)
	for _, b := range data {
		s1 = (s1 + uint32(b)) % adlerModulus
		s2 = (s2 + s1) % adlerModulus
	}
	return s2<<16 | s1
}
