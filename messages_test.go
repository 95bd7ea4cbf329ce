// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"reflect"
	"testing"
)

func TestMessages_ParseSetPixelFormat(t *testing.T) {
	buf := []byte{msgSetPixelFormat, 0, 0, 0}
	buf = appendPixelFormat(buf, &serverPixelFormat)

	msg, consumed, err := parseClientMessage(buf)
	if err != nil {
		t.Fatalf("parseClientMessage() error = %v", err)
	}
	if consumed != 20 {
		t.Errorf("consumed = %d, want 20", consumed)
	}

	decoded, ok := msg.(setPixelFormatMsg)
	if !ok {
		t.Fatalf("decoded %T, want setPixelFormatMsg", msg)
	}
	if !reflect.DeepEqual(decoded.format, serverPixelFormat) {
		t.Errorf("decoded format %+v, want %+v", decoded.format, serverPixelFormat)
	}
}

func TestMessages_ParseSetEncodings(t *testing.T) {
	buf := []byte{msgSetEncodings, 0}
	buf = appendU16(buf, 3)
	buf = appendS32(buf, EncodingTight)
	buf = appendS32(buf, EncodingRaw)
	buf = appendS32(buf, -239) // cursor pseudo-encoding, must decode signed

	msg, consumed, err := parseClientMessage(buf)
	if err != nil {
		t.Fatalf("parseClientMessage() error = %v", err)
	}
	if consumed != 16 {
		t.Errorf("consumed = %d, want 16", consumed)
	}

	decoded := msg.(setEncodingsMsg)
	want := []int32{EncodingTight, EncodingRaw, -239}
	if !reflect.DeepEqual(decoded.encodings, want) {
		t.Errorf("encodings = %v, want %v", decoded.encodings, want)
	}
}

func TestMessages_ParseUpdateRequest(t *testing.T) {
	buf := []byte{msgFramebufferUpdateRequest, 1}
	buf = appendU16(buf, 10)
	buf = appendU16(buf, 20)
	buf = appendU16(buf, 320)
	buf = appendU16(buf, 200)

	msg, consumed, err := parseClientMessage(buf)
	if err != nil {
		t.Fatalf("parseClientMessage() error = %v", err)
	}
	if consumed != 10 {
		t.Errorf("consumed = %d, want 10", consumed)
	}

	decoded := msg.(updateRequestMsg)
	want := updateRequestMsg{incremental: true, x: 10, y: 20, width: 320, height: 200}
	if decoded != want {
		t.Errorf("decoded %+v, want %+v", decoded, want)
	}
}

func TestMessages_ParseKeyEvent(t *testing.T) {
	buf := []byte{msgKeyEvent, 1, 0, 0}
	buf = appendU32(buf, 0xff1b)

	msg, consumed, err := parseClientMessage(buf)
	if err != nil {
		t.Fatalf("parseClientMessage() error = %v", err)
	}
	if consumed != 8 {
		t.Errorf("consumed = %d, want 8", consumed)
	}

	decoded := msg.(keyEventMsg)
	if !decoded.down || decoded.keysym != 0xff1b {
		t.Errorf("decoded %+v, want down escape", decoded)
	}
}

func TestMessages_ParsePointerEvent(t *testing.T) {
	buf := []byte{msgPointerEvent, 0x05}
	buf = appendU16(buf, 120)
	buf = appendU16(buf, 90)

	msg, consumed, err := parseClientMessage(buf)
	if err != nil {
		t.Fatalf("parseClientMessage() error = %v", err)
	}
	if consumed != 6 {
		t.Errorf("consumed = %d, want 6", consumed)
	}

	decoded := msg.(pointerEventMsg)
	want := pointerEventMsg{mask: 0x05, x: 120, y: 90}
	if decoded != want {
		t.Errorf("decoded %+v, want %+v", decoded, want)
	}
}

func TestMessages_ParseCutText(t *testing.T) {
	text := "clipboard contents"
	buf := []byte{msgClientCutText, 0, 0, 0}
	buf = appendU32(buf, uint32(len(text)))
	buf = append(buf, text...)

	msg, consumed, err := parseClientMessage(buf)
	if err != nil {
		t.Fatalf("parseClientMessage() error = %v", err)
	}
	if consumed != 8+len(text) {
		t.Errorf("consumed = %d, want %d", consumed, 8+len(text))
	}
	if decoded := msg.(cutTextMsg); decoded.length != uint32(len(text)) {
		t.Errorf("length = %d, want %d", decoded.length, len(text))
	}
}

func TestMessages_ParseIncomplete(t *testing.T) {
	// One complete KeyEvent, truncated at every possible prefix length.
	full := []byte{msgKeyEvent, 1, 0, 0}
	full = appendU32(full, 0x61)

	for cut := 1; cut < len(full); cut++ {
		msg, consumed, err := parseClientMessage(full[:cut])
		if err != nil {
			t.Fatalf("prefix %d: error = %v", cut, err)
		}
		if msg != nil || consumed != 0 {
			t.Errorf("prefix %d: got (%v, %d), want incomplete", cut, msg, consumed)
		}
	}
}

func TestMessages_ParseUnknownOpcode(t *testing.T) {
	for _, opcode := range []byte{1, 7, 0x42, 0xff} {
		_, _, err := parseClientMessage([]byte{opcode, 0, 0, 0})
		if err != errUnknownMessage {
			t.Errorf("opcode %d: error = %v, want errUnknownMessage", opcode, err)
		}
	}
}

func TestMessages_ParseEmptyBuffer(t *testing.T) {
	msg, consumed, err := parseClientMessage(nil)
	if msg != nil || consumed != 0 || err != nil {
		t.Errorf("parseClientMessage(nil) = (%v, %d, %v), want incomplete", msg, consumed, err)
	}
}
