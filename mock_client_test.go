// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"
)

// MockVNCClient drives the client side of the RFB protocol against a server
// under test.
type MockVNCClient struct {
	conn net.Conn

	// Configuration applied during Handshake.
	Version      string
	SecurityType uint8

	// Populated from the ServerInit message.
	FrameWidth  uint16
	FrameHeight uint16
	DesktopName string
}

// NewMockVNCClient returns a client with well-formed handshake defaults.
func NewMockVNCClient() *MockVNCClient {
	return &MockVNCClient{
		Version:      protocolVersion,
		SecurityType: securityTypeNone,
	}
}

// Connect dials the server with a bounded timeout.
func (c *MockVNCClient) Connect(addr string) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

// Close closes the client connection.
func (c *MockVNCClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Handshake runs the client side of the RFB 3.8 sequence using the
// configured version and security type, recording the ServerInit fields.
func (c *MockVNCClient) Handshake() error {
	serverVersion := make([]byte, 12)
	if _, err := io.ReadFull(c.conn, serverVersion); err != nil {
		return fmt.Errorf("read server version: %w", err)
	}

	if _, err := c.conn.Write([]byte(c.Version)); err != nil {
		return fmt.Errorf("write client version: %w", err)
	}

	var count [1]byte
	if _, err := io.ReadFull(c.conn, count[:]); err != nil {
		return fmt.Errorf("read security type count: %w", err)
	}
	if count[0] == 0 {
		reason, err := c.readReason()
		if err != nil {
			return err
		}
		return fmt.Errorf("server rejected version: %s", reason)
	}

	types := make([]byte, count[0])
	if _, err := io.ReadFull(c.conn, types); err != nil {
		return fmt.Errorf("read security types: %w", err)
	}

	if _, err := c.conn.Write([]byte{c.SecurityType}); err != nil {
		return fmt.Errorf("write security choice: %w", err)
	}

	var result [4]byte
	if _, err := io.ReadFull(c.conn, result[:]); err != nil {
		return fmt.Errorf("read security result: %w", err)
	}
	if binary.BigEndian.Uint32(result[:]) != securityResultOK {
		reason, err := c.readReason()
		if err != nil {
			return err
		}
		return fmt.Errorf("server rejected security type: %s", reason)
	}

	// ClientInit: request a shared session.
	if _, err := c.conn.Write([]byte{1}); err != nil {
		return fmt.Errorf("write client init: %w", err)
	}

	serverInit := make([]byte, 24)
	if _, err := io.ReadFull(c.conn, serverInit); err != nil {
		return fmt.Errorf("read server init: %w", err)
	}
	c.FrameWidth = binary.BigEndian.Uint16(serverInit[0:])
	c.FrameHeight = binary.BigEndian.Uint16(serverInit[2:])

	nameLen := binary.BigEndian.Uint32(serverInit[20:])
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(c.conn, name); err != nil {
		return fmt.Errorf("read desktop name: %w", err)
	}
	c.DesktopName = string(name)
	return nil
}

func (c *MockVNCClient) readReason() (string, error) {
	var length [4]byte
	if _, err := io.ReadFull(c.conn, length[:]); err != nil {
		return "", fmt.Errorf("read reason length: %w", err)
	}
	reason := make([]byte, binary.BigEndian.Uint32(length[:]))
	if _, err := io.ReadFull(c.conn, reason); err != nil {
		return "", fmt.Errorf("read reason: %w", err)
	}
	return string(reason), nil
}

// SendSetEncodings sends a SetEncodings message declaring the given list.
func (c *MockVNCClient) SendSetEncodings(encodings ...int32) error {
	msg := []byte{msgSetEncodings, 0}
	msg = appendU16(msg, uint16(len(encodings)))
	for _, enc := range encodings {
		msg = appendS32(msg, enc)
	}
	_, err := c.conn.Write(msg)
	return err
}

// SendUpdateRequest sends a full-frame FramebufferUpdateRequest.
func (c *MockVNCClient) SendUpdateRequest(incremental bool) error {
	msg := []byte{msgFramebufferUpdateRequest, 0}
	if incremental {
		msg[1] = 1
	}
	msg = appendU16(msg, 0)
	msg = appendU16(msg, 0)
	msg = appendU16(msg, c.FrameWidth)
	msg = appendU16(msg, c.FrameHeight)
	_, err := c.conn.Write(msg)
	return err
}

// SendKeyEvent sends one KeyEvent message.
func (c *MockVNCClient) SendKeyEvent(down bool, keysym uint32) error {
	msg := []byte{msgKeyEvent, 0, 0, 0}
	if down {
		msg[1] = 1
	}
	msg = appendU32(msg, keysym)
	_, err := c.conn.Write(msg)
	return err
}

// SendPointerEvent sends one PointerEvent message.
func (c *MockVNCClient) SendPointerEvent(mask uint8, x, y uint16) error {
	msg := []byte{msgPointerEvent, mask}
	msg = appendU16(msg, x)
	msg = appendU16(msg, y)
	_, err := c.conn.Write(msg)
	return err
}

// ReadUpdateHeader reads one FramebufferUpdate header and returns the
// rectangle's encoding id and geometry. The rectangle payload stays on the
// connection for the caller to read directly.
func (c *MockVNCClient) ReadUpdateHeader() (encoding int32, width, height uint16, err error) {
	header := make([]byte, 16)
	if _, err := io.ReadFull(c.conn, header); err != nil {
		return 0, 0, 0, fmt.Errorf("read update header: %w", err)
	}
	if header[0] != msgFramebufferUpdate {
		return 0, 0, 0, fmt.Errorf("unexpected message type %d", header[0])
	}
	if rects := binary.BigEndian.Uint16(header[2:]); rects != 1 {
		return 0, 0, 0, fmt.Errorf("unexpected rectangle count %d", rects)
	}
	width = binary.BigEndian.Uint16(header[8:])
	height = binary.BigEndian.Uint16(header[10:])
	encoding = int32(binary.BigEndian.Uint32(header[12:]))
	return encoding, width, height, nil
}

// Conn exposes the raw connection for direct reads and writes.
func (c *MockVNCClient) Conn() net.Conn {
	return c.conn
}

// startTestServer creates a server bound to an ephemeral port, runs Init in
// the background, and returns the server plus the address to dial.
func startTestServer(t testingT, width, height int, options ...ServerOption) (*Server, string, chan error) {
	t.Helper()

	addrCh := make(chan net.Addr, 1)
	options = append(options,
		WithListenAddress("127.0.0.1:0"),
		WithListenCallback(func(addr net.Addr) {
			addrCh <- addr
		}),
	)

	server, err := New(width, height, options...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	initErr := make(chan error, 1)
	go func() {
		initErr <- server.Init()
	}()

	select {
	case addr := <-addrCh:
		return server, addr.String(), initErr
	case err := <-initErr:
		t.Fatalf("Init() failed before listening: %v", err)
		return nil, "", nil
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for listener")
		return nil, "", nil
	}
}

// testingT is the subset of *testing.T the helpers use.
type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}
