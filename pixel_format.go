// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

// PixelFormat describes how pixel color data is encoded and interpreted in a
// VNC connection, per the 16-byte structure of RFC 6143 Section 7.4.
type PixelFormat struct {
	// BPP (bits-per-pixel) specifies how many bits represent each pixel.
	BPP uint8

	// Depth specifies the number of useful bits within each pixel value.
	Depth uint8

	// BigEndian determines the byte order for multi-byte pixel values.
	BigEndian bool

	// TrueColor determines whether pixels represent direct RGB values (true)
	// or indices into a color map (false).
	TrueColor bool

	// RedMax specifies the maximum value for the red color component.
	RedMax uint16

	// GreenMax specifies the maximum value for the green color component.
	GreenMax uint16

	// BlueMax specifies the maximum value for the blue color component.
	BlueMax uint16

	// RedShift positions the red component within a pixel value.
	RedShift uint8

	// GreenShift positions the green component within a pixel value.
	GreenShift uint8

	// BlueShift positions the blue component within a pixel value.
	BlueShift uint8
}

// serverPixelFormat is the one pixel format this server speaks on the Raw
// path: 32-bit little-endian truecolor with a 24-bit depth, so each pixel
// goes over the wire as B, G, R, padding.
var serverPixelFormat = PixelFormat{
	BPP:        32,
	Depth:      24,
	BigEndian:  false,
	TrueColor:  true,
	RedMax:     255,
	GreenMax:   255,
	BlueMax:    255,
	RedShift:   16,
	GreenShift: 8,
	BlueShift:  0,
}

// appendPixelFormat appends the 16-byte wire representation of a pixel
// format, including the three trailing padding bytes.
func appendPixelFormat(dst []byte, pf *PixelFormat) []byte {
	var bigEndian, trueColor byte
	if pf.BigEndian {
		bigEndian = 1
	}
	if pf.TrueColor {
		trueColor = 1
	}

	dst = append(dst, pf.BPP, pf.Depth, bigEndian, trueColor)
	dst = appendU16(dst, pf.RedMax)
	dst = appendU16(dst, pf.GreenMax)
	dst = appendU16(dst, pf.BlueMax)
	dst = append(dst, pf.RedShift, pf.GreenShift, pf.BlueShift)
	return append(dst, 0, 0, 0)
}

// parsePixelFormat decodes the 16-byte wire representation of a pixel
// format. The caller guarantees len(buf) >= 16.
func parsePixelFormat(buf []byte) PixelFormat {
	return PixelFormat{
		BPP:        buf[0],
		Depth:      buf[1],
		BigEndian:  buf[2] != 0,
		TrueColor:  buf[3] != 0,
		RedMax:     readU16(buf[4:]),
		GreenMax:   readU16(buf[6:]),
		BlueMax:    readU16(buf[8:]),
		RedShift:   buf[10],
		GreenShift: buf[11],
		BlueShift:  buf[12],
	}
}
