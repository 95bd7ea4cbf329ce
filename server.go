// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"fmt"
	"net"
)

// recvBufferSize bounds how much unparsed client data may accumulate
// between pump calls. No legal client message outgrows this except an
// oversized clipboard paste, which resynchronization drops.
const recvBufferSize = 1024

// Server is a single-client VNC session: it owns the connection, the
// receive and send buffers, the palette copy, and the negotiated session
// state. All methods must be called from one goroutine; the intended
// cadence is PumpMessages, render, SendFrame once per simulation tick.
type Server struct {
	config    ServerConfig
	logger    Logger
	metrics   *Metrics
	validator *InputValidator
	sink      EventSink

	width  int
	height int

	conn net.Conn

	recvBuf [recvBufferSize]byte
	recvLen int

	sendBuf []byte

	palette     Palette
	havePalette bool

	encoding      int32
	pendingUpdate bool
	textInput     bool

	cursorX int
	cursorY int

	done bool
}

// New creates a VNC server for a framebuffer of the given dimensions.
// Init must be called before any other operation.
func New(width, height int, options ...ServerOption) (*Server, error) {
	cfg := defaultServerConfig()
	for _, option := range options {
		option(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = &NoOpLogger{}
	}
	if cfg.Sink == nil {
		cfg.Sink = discardSink{}
	}

	validator := newInputValidator()
	if err := validator.ValidateFramebufferSize(width, height); err != nil {
		return nil, configurationError("New", "invalid framebuffer dimensions", err)
	}
	if err := validator.ValidateDesktopName(cfg.DesktopName); err != nil {
		return nil, configurationError("New", "invalid desktop name", err)
	}

	return &Server{
		config:    cfg,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		validator: validator,
		sink:      cfg.Sink,
		width:     width,
		height:    height,
		encoding:  EncodingRaw,
		sendBuf:   make([]byte, 0, width*height*4+64),
	}, nil
}

// Width returns the framebuffer width advertised to the client.
func (s *Server) Width() int { return s.width }

// Height returns the framebuffer height advertised to the client.
func (s *Server) Height() int { return s.height }

// SetTextInput toggles text-entry interpretation of key-down events. When
// enabled, key-down events carry the client's original keysym as a typed
// character, preserving case and shift.
func (s *Server) SetTextInput(enabled bool) {
	s.textInput = enabled
}

// PreparePalette copies a 256-entry RGB palette into server-owned storage.
// Must be called at least once before any frame can be sent; the source may
// be reused by the caller immediately.
func (s *Server) PreparePalette(p *Palette) {
	if p == nil {
		return
	}
	s.palette = *p
	s.havePalette = true
}

// PumpMessages drains whatever client data is already available and
// dispatches the complete messages it contains. It never blocks waiting
// for data; an idle connected peer is steady state. Transport failures
// tear the session down and invoke the termination hook.
func (s *Server) PumpMessages() {
	if s.conn == nil || s.done {
		return
	}

	if s.recvLen < recvBufferSize {
		n, err := s.readAvailable()
		if err != nil {
			s.fatal(err)
			return
		}
		if n == 0 {
			return
		}
		s.recvLen += n
	}

	s.dispatchBuffered()
}

// dispatchBuffered consumes complete messages from the front of the receive
// buffer, compacts the unconsumed tail to offset zero, and emits at most one
// collapsed pointer event for the whole batch.
func (s *Server) dispatchBuffered() {
	var (
		pointerSeen bool
		pointerMask uint8
		pointerX    uint16
		pointerY    uint16
	)

	offset := 0
	for offset < s.recvLen {
		msg, consumed, err := parseClientMessage(s.recvBuf[offset:s.recvLen])
		if err != nil {
			// Unknown opcode: the message length cannot be known, so drop
			// everything buffered and hope the next read lands on a
			// message boundary.
			s.logger.Warn("discarding receive buffer to resynchronize",
				Field{Key: "opcode", Value: int(s.recvBuf[offset])},
				Field{Key: "dropped", Value: s.recvLen - offset})
			s.metrics.resyncDiscard()
			s.recvLen = 0
			return
		}
		if consumed == 0 {
			break
		}
		offset += consumed

		switch m := msg.(type) {
		case setPixelFormatMsg:
			s.handleSetPixelFormat(m)
		case setEncodingsMsg:
			s.handleSetEncodings(m)
		case updateRequestMsg:
			s.handleUpdateRequest(m)
		case keyEventMsg:
			s.handleKeyEvent(m)
		case pointerEventMsg:
			s.metrics.messageReceived("pointer_event")
			pointerSeen = true
			pointerMask |= m.mask
			pointerX, pointerY = m.x, m.y
		case cutTextMsg:
			s.metrics.messageReceived("cut_text")
		}
		if s.done {
			return
		}
	}

	if offset > 0 {
		copy(s.recvBuf[:], s.recvBuf[offset:s.recvLen])
		s.recvLen -= offset
	} else if s.recvLen == recvBufferSize {
		// A message that cannot complete within a full buffer never will;
		// drop it all, same resync fallback as an unknown opcode.
		s.logger.Warn("receive buffer overflow, discarding",
			Field{Key: "dropped", Value: s.recvLen})
		s.metrics.resyncDiscard()
		s.recvLen = 0
	}

	if pointerSeen {
		s.emitPointer(pointerMask, pointerX, pointerY)
	}
}

func (s *Server) handleSetPixelFormat(m setPixelFormatMsg) {
	s.metrics.messageReceived("set_pixel_format")
	if err := s.validator.ValidatePixelFormat(m.format); err != nil {
		// No fallback renderer exists for other pixel formats; end the
		// session rather than serve frames the client cannot display.
		s.fatal(unsupportedError("Server.PumpMessages",
			"client pixel format not supported", err))
	}
}

func (s *Server) handleSetEncodings(m setEncodingsMsg) {
	s.metrics.messageReceived("set_encodings")
	s.encoding = EncodingRaw
	for _, enc := range m.encodings {
		if enc == EncodingTight {
			s.encoding = EncodingTight
			break
		}
	}
	s.logger.Debug("encoding negotiated",
		Field{Key: "encoding", Value: encodingName(s.encoding)},
		Field{Key: "offered", Value: len(m.encodings)})
}

func (s *Server) handleUpdateRequest(m updateRequestMsg) {
	s.metrics.messageReceived("update_request")
	// The incremental flag and region are ignored: every update carries
	// the full framebuffer.
	s.pendingUpdate = true
}

func (s *Server) handleKeyEvent(m keyEventMsg) {
	s.metrics.messageReceived("key_event")
	key, known := translateKeysym(m.keysym)
	if !known {
		s.logger.Debug("ignoring unmapped keysym",
			Field{Key: "keysym", Value: fmt.Sprintf("0x%04x", m.keysym)})
		return
	}

	ev := KeyEvent{Down: m.down, Key: unshiftKey(key)}
	if m.down {
		ev.Localized = ev.Key
		if s.textInput {
			ev.Char = rune(m.keysym)
		}
	}
	s.sink.PostKeyEvent(ev)
	s.metrics.inputEvent("key")
}

// emitPointer converts the batch's final absolute position into a relative
// motion event and advances the stored cursor.
func (s *Server) emitPointer(mask uint8, x, y uint16) {
	buttons := 0
	if mask&0x01 != 0 {
		buttons |= MouseLeft
	}
	if mask&0x02 != 0 {
		buttons |= MouseMiddle
	}
	if mask&0x04 != 0 {
		buttons |= MouseRight
	}
	if mask&0x08 != 0 {
		buttons |= MouseWheelUp
	}
	if mask&0x10 != 0 {
		buttons |= MouseWheelDown
	}

	ev := MouseEvent{
		Buttons: buttons,
		DX:      int(x) - s.cursorX,
		DY:      int(y) - s.cursorY,
	}
	s.cursorX = int(x)
	s.cursorY = int(y)

	s.sink.PostMouseEvent(ev)
	s.metrics.inputEvent("mouse")
}

// SendFrame serializes and transmits one full frame of palette indices in
// the negotiated encoding. It is a no-op until the client has requested an
// update and a palette has been prepared; on success the pending request is
// cleared. Write failures tear the session down and invoke the termination
// hook.
func (s *Server) SendFrame(frame []byte) error {
	if s.conn == nil || s.done {
		return nil
	}
	if !s.pendingUpdate || !s.havePalette {
		return nil
	}
	if len(frame) != s.width*s.height {
		return validationError("Server.SendFrame",
			fmt.Sprintf("framebuffer length %d does not match %dx%d",
				len(frame), s.width, s.height), nil)
	}

	buf := s.sendBuf[:0]
	switch s.encoding {
	case EncodingTight:
		buf = appendUpdateHeader(buf, uint16(s.width), uint16(s.height), EncodingTight)
		buf = appendTightRect(buf, frame, &s.palette)
	default:
		buf = appendUpdateHeader(buf, uint16(s.width), uint16(s.height), EncodingRaw)
		buf = appendRawRect(buf, frame, &s.palette)
	}
	s.sendBuf = buf

	if err := sendAll(s.conn, buf); err != nil {
		s.fatal(err)
		return err
	}

	s.pendingUpdate = false
	s.metrics.frameSent(encodingName(s.encoding), len(buf))
	return nil
}

// Exit closes the client connection and releases session state. Safe to
// call when already torn down.
func (s *Server) Exit() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		s.logger.Info("session closed")
	}
	s.done = true
	s.recvLen = 0
	s.pendingUpdate = false
	s.havePalette = false
}

// fatal tears the session down after an unrecoverable transport or protocol
// failure and invokes the termination hook exactly once.
func (s *Server) fatal(err error) {
	if s.done {
		return
	}
	s.logger.Error("fatal connection error", Field{Key: "error", Value: err.Error()})
	s.Exit()
	if s.config.OnFatal != nil {
		s.config.OnFatal(err)
	}
}

func encodingName(encoding int32) string {
	if encoding == EncodingTight {
		return "tight"
	}
	return "raw"
}
