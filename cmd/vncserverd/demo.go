// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package main

import "github.com/retrodisplay/vncserver"

// demoScene renders a scrolling plasma-style test pattern into a
// palette-indexed framebuffer. It stands in for a real renderer so the
// serve command has something to show a connected viewer.
type demoScene struct {
	width   int
	height  int
	frame   []byte
	palette vncserver.Palette
	tick    int
	offsetX int
	offsetY int
	invert  bool
}

func newDemoScene(width, height int) *demoScene {
	s := &demoScene{
		width:  width,
		height: height,
		frame:  make([]byte, width*height),
	}
	for i := range s.palette {
		s.palette[i] = vncserver.Color{
			R: uint8(i),
			G: uint8((i * 3) % 256),
			B: uint8(255 - i),
		}
	}
	return s
}

func (s *demoScene) Palette() *vncserver.Palette {
	return &s.palette
}

func (s *demoScene) Frame() []byte {
	return s.frame
}

// Advance redraws the pattern for the next tick.
func (s *demoScene) Advance() {
	s.tick++
	for y := 0; y < s.height; y++ {
		row := s.frame[y*s.width : (y+1)*s.width]
		for x := range row {
			idx := byte(x + s.offsetX + (y+s.offsetY)*2 + s.tick)
			if s.invert {
				idx = 255 - idx
			}
			row[x] = idx
		}
	}
}

// HandleEvents drains the input queue: mouse motion scrolls the pattern,
// any key press inverts the palette mapping.
func (s *demoScene) HandleEvents(sink *vncserver.QueueSink) {
	for {
		ev, ok := sink.Next()
		if !ok {
			return
		}
		switch e := ev.(type) {
		case vncserver.MouseEvent:
			s.offsetX += e.DX
			s.offsetY += e.DY
		case vncserver.KeyEvent:
			if e.Down {
				s.invert = !s.invert
			}
		}
	}
}
