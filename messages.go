// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import "errors"

// Client-to-server message types, RFC 6143 Section 7.5.
const (
	msgSetPixelFormat           = 0
	msgSetEncodings             = 2
	msgFramebufferUpdateRequest = 3
	msgKeyEvent                 = 4
	msgPointerEvent             = 5
	msgClientCutText            = 6
)

// Update encoding identifiers, RFC 6143 Section 7.7 plus the Tight extension.
const (
	// EncodingRaw is uncompressed truecolor pixel data (RFC 6143 7.7.1).
	EncodingRaw int32 = 0

	// EncodingTight is the Tight extension's basic palette mode.
	EncodingTight int32 = 7
)

// errUnknownMessage signals an opcode the dispatcher does not recognize. The
// caller responds by discarding the whole receive buffer: a best-effort
// resynchronization, since the message's length cannot be known.
var errUnknownMessage = errors.New("unrecognized client message opcode")

// Decoded client messages. Parsing is a pure step over the receive buffer;
// translation into host events and session state changes happens in the
// server facade.
type (
	// setPixelFormatMsg carries the client's requested pixel format.
	setPixelFormatMsg struct {
		format PixelFormat
	}

	// setEncodingsMsg carries the client's declared encoding list in
	// preference order.
	setEncodingsMsg struct {
		encodings []int32
	}

	// updateRequestMsg asks for a framebuffer update. The incremental flag
	// and region are decoded but the server always sends the full frame.
	updateRequestMsg struct {
		incremental bool
		x, y        uint16
		width       uint16
		height      uint16
	}

	// keyEventMsg is a key press or release identified by X11 keysym.
	keyEventMsg struct {
		down   bool
		keysym uint32
	}

	// pointerEventMsg is an absolute cursor position plus button mask.
	pointerEventMsg struct {
		mask uint8
		x, y uint16
	}

	// cutTextMsg is client clipboard data; parsed only to skip over it.
	cutTextMsg struct {
		length uint32
	}
)

// parseClientMessage attempts to decode one complete client message from the
// front of buf. It returns the decoded message and the number of bytes it
// occupied. A consumed count of zero with a nil error means the message is
// recognized but incomplete; the caller leaves the bytes buffered for the
// next read. errUnknownMessage means the opcode itself is unrecognized.
func parseClientMessage(buf []byte) (msg interface{}, consumed int, err error) {
	if len(buf) == 0 {
		return nil, 0, nil
	}

	switch buf[0] {
	case msgSetPixelFormat:
		if len(buf) < 20 {
			return nil, 0, nil
		}
		return setPixelFormatMsg{format: parsePixelFormat(buf[4:20])}, 20, nil

	case msgSetEncodings:
		if len(buf) < 4 {
			return nil, 0, nil
		}
		count := int(readU16(buf[2:]))
		total := 4 + count*4
		if len(buf) < total {
			return nil, 0, nil
		}
		encodings := make([]int32, count)
		for i := 0; i < count; i++ {
			encodings[i] = int32(readU32(buf[4+i*4:]))
		}
		return setEncodingsMsg{encodings: encodings}, total, nil

	case msgFramebufferUpdateRequest:
		if len(buf) < 10 {
			return nil, 0, nil
		}
		return updateRequestMsg{
			incremental: buf[1] != 0,
			x:           readU16(buf[2:]),
			y:           readU16(buf[4:]),
			width:       readU16(buf[6:]),
			height:      readU16(buf[8:]),
		}, 10, nil

	case msgKeyEvent:
		if len(buf) < 8 {
			return nil, 0, nil
		}
		return keyEventMsg{
			down:   buf[1] != 0,
			keysym: readU32(buf[4:]),
		}, 8, nil

	case msgPointerEvent:
		if len(buf) < 6 {
			return nil, 0, nil
		}
		return pointerEventMsg{
			mask: buf[1],
			x:    readU16(buf[2:]),
			y:    readU16(buf[4:]),
		}, 6, nil

	case msgClientCutText:
		if len(buf) < 8 {
			return nil, 0, nil
		}
		length := readU32(buf[4:])
		total := 8 + int(length)
		if total < 8 || len(buf) < total {
			// Oversized clipboard payloads can never fit the receive
			// buffer; those surface as repeated discards once the buffer
			// fills, the same resync fallback as an unknown opcode.
			return nil, 0, nil
		}
		return cutTextMsg{length: length}, total, nil

	default:
		return nil, 0, errUnknownMessage
	}
}
