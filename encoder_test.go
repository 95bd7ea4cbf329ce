// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"bytes"
	"compress/zlib"
	"hash/adler32"
	"io"
	"testing"
)

func testPalette() *Palette {
	var pal Palette
	for i := range pal {
		pal[i] = Color{R: uint8(i), G: uint8(i / 2), B: uint8(255 - i)}
	}
	return &pal
}

func TestEncoder_UpdateHeader(t *testing.T) {
	got := appendUpdateHeader(nil, 320, 200, EncodingTight)

	want := []byte{
		0, 0, // message type, padding
		0, 1, // one rectangle
		0, 0, 0, 0, // x, y
		0x01, 0x40, // width 320
		0x00, 0xc8, // height 200
		0, 0, 0, 7, // encoding
	}
	if !bytes.Equal(got, want) {
		t.Errorf("header = % x, want % x", got, want)
	}
}

func TestEncoder_RawRect(t *testing.T) {
	pal := testPalette()
	frame := []byte{0, 1, 255}

	got := appendRawRect(nil, frame, pal)

	var want []byte
	for _, index := range frame {
		c := pal[index]
		want = append(want, c.B, c.G, c.R, 0)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("raw rect = % x, want % x", got, want)
	}
}

func TestEncoder_CompactLength(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0x10890, []byte{0x90, 0x91, 0x04}},
	}

	for _, tt := range tests {
		if got := appendCompactLength(nil, tt.n); !bytes.Equal(got, tt.want) {
			t.Errorf("appendCompactLength(%#x) = % x, want % x", tt.n, got, tt.want)
		}
	}
}

func TestEncoder_ZlibStoredDecompresses(t *testing.T) {
	for _, size := range []int{0, 1, 100, maxStoredBlock, maxStoredBlock + 1, 320 * 200} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i * 7)
		}

		stream := appendZlibStored(nil, data)
		if len(stream) != zlibStoredSize(size) {
			t.Errorf("size %d: stream length %d, want %d", size, len(stream), zlibStoredSize(size))
		}

		reader, err := zlib.NewReader(bytes.NewReader(stream))
		if err != nil {
			t.Fatalf("size %d: zlib.NewReader() error = %v", size, err)
		}
		inflated, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("size %d: inflate error = %v", size, err)
		}
		reader.Close()

		if !bytes.Equal(inflated, data) {
			t.Errorf("size %d: inflated bytes differ from input", size)
		}
	}
}

func TestEncoder_StoredBlockChunking(t *testing.T) {
	// 65536 bytes must split into a full non-final block and a 1-byte final
	// block; 131072 bytes into three blocks with only the last final.
	tests := []struct {
		size        int
		wantLengths []int
	}{
		{65536, []int{65535, 1}},
		{131072, []int{65535, 65535, 2}},
	}

	for _, tt := range tests {
		if got := storedBlockCount(tt.size); got != len(tt.wantLengths) {
			t.Errorf("storedBlockCount(%d) = %d, want %d", tt.size, got, len(tt.wantLengths))
		}

		stream := appendZlibStored(nil, make([]byte, tt.size))

		offset := 2 // skip the zlib header
		for i, wantLen := range tt.wantLengths {
			header := stream[offset]
			length := int(stream[offset+1]) | int(stream[offset+2])<<8
			complement := uint16(stream[offset+3]) | uint16(stream[offset+4])<<8

			wantFinal := byte(0)
			if i == len(tt.wantLengths)-1 {
				wantFinal = 1
			}
			if header != wantFinal {
				t.Errorf("size %d block %d: header = %d, want %d", tt.size, i, header, wantFinal)
			}
			if length != wantLen {
				t.Errorf("size %d block %d: length = %d, want %d", tt.size, i, length, wantLen)
			}
			if complement != ^uint16(wantLen) {
				t.Errorf("size %d block %d: complement = %#x, want %#x",
					tt.size, i, complement, ^uint16(wantLen))
			}

			offset += 5 + length
		}

		if remaining := len(stream) - offset; remaining != 4 {
			t.Errorf("size %d: %d trailing bytes after blocks, want 4", tt.size, remaining)
		}
	}
}

func TestEncoder_Adler32MatchesReference(t *testing.T) {
	for _, size := range []int{0, 1, 65536, 65537} {
		data := make([]byte, size)
		got := adler32Sum(data)
		want := adler32.Checksum(data)
		if got != want {
			t.Errorf("adler32Sum(%d zero bytes) = %#x, want %#x", size, got, want)
		}
	}

	varied := []byte("the quick brown fox jumps over the lazy dog")
	if got, want := adler32Sum(varied), adler32.Checksum(varied); got != want {
		t.Errorf("adler32Sum(varied) = %#x, want %#x", got, want)
	}
}

func TestEncoder_TightRectStructure(t *testing.T) {
	pal := testPalette()
	frame := make([]byte, 64)
	for i := range frame {
		frame[i] = byte(i)
	}

	rect := appendTightRect(nil, frame, pal)

	if rect[0] != tightResetStream0|tightExplicitFilter {
		t.Errorf("compression control = %#x, want %#x", rect[0], tightResetStream0|tightExplicitFilter)
	}
	if rect[1] != tightFilterPalette {
		t.Errorf("filter id = %#x, want %#x", rect[1], tightFilterPalette)
	}
	if rect[2] != PaletteSize-1 {
		t.Errorf("palette size byte = %d, want %d", rect[2], PaletteSize-1)
	}

	// 256 RGB triples follow, in palette order without endian scaling.
	for i := 0; i < PaletteSize; i++ {
		entry := rect[3+i*3 : 6+i*3]
		if entry[0] != pal[i].R || entry[1] != pal[i].G || entry[2] != pal[i].B {
			t.Fatalf("palette entry %d = % x, want %02x %02x %02x",
				i, entry, pal[i].R, pal[i].G, pal[i].B)
		}
	}

	// Compact length for this small payload fits one byte; the zlib stream
	// follows and must inflate back to the palette indices.
	payloadStart := 3 + PaletteSize*3
	wantSize := zlibStoredSize(len(frame))
	if wantSize >= 0x80 {
		t.Fatalf("test payload unexpectedly large: %d", wantSize)
	}
	if length := int(rect[payloadStart]); length != wantSize {
		t.Errorf("compact length = %d, want %d", length, wantSize)
	}

	stream := rect[payloadStart+1:]
	if len(stream) != wantSize {
		t.Fatalf("zlib stream length = %d, want %d", len(stream), wantSize)
	}

	reader, err := zlib.NewReader(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("zlib.NewReader() error = %v", err)
	}
	defer reader.Close()
	inflated, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("inflate error = %v", err)
	}
	if !bytes.Equal(inflated, frame) {
		t.Error("inflated payload differs from the palette indices")
	}
}
