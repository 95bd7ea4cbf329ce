// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

// Host logical key codes emitted by translated key events. Keys with a real
// ASCII mapping reuse their ASCII value; everything else lives above the
// 7-bit range so it can never collide with typed characters.
const (
	KeyEscape    = 0x1b
	KeyBackspace = 0x08
	KeyTab       = 0x09
	KeyEnter     = 0x0d
	KeyDelete    = 0x7f
)

const (
	KeyRightArrow = 0x80 + iota
	KeyLeftArrow
	KeyUpArrow
	KeyDownArrow
	KeyRShift
	KeyRCtrl
	KeyRAlt
	KeyPause
	KeyCapsLock
	KeyScrollLock
	KeyNumLock
	KeyPrintScreen
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// specialKeysyms maps X11 keysyms outside the ASCII range to host key codes.
// The left/right modifier pairs collapse to one representative key each,
// matching how the host input model names them.
var specialKeysyms = map[uint32]int{
	0xff1b: KeyEscape,
	0xff08: KeyBackspace,
	0xff09: KeyTab,
	0xff0d: KeyEnter,
	0xffff: KeyDelete,
	0xffbe: KeyF1,
	0xffbf: KeyF2,
	0xffc0: KeyF3,
	0xffc1: KeyF4,
	0xffc2: KeyF5,
	0xffc3: KeyF6,
	0xffc4: KeyF7,
	0xffc5: KeyF8,
	0xffc6: KeyF9,
	0xffc7: KeyF10,
	0xffc8: KeyF11,
	0xffc9: KeyF12,
	0xff51: KeyLeftArrow,
	0xff52: KeyUpArrow,
	0xff53: KeyRightArrow,
	0xff54: KeyDownArrow,
	0xff13: KeyPause,
	0xffe1: KeyRShift, // Left shift
	0xffe2: KeyRShift, // Right shift
	0xffe3: KeyRCtrl,  // Left control
	0xffe4: KeyRCtrl,  // Right control
	0xffe9: KeyRAlt,   // Left alt
	0xffea: KeyRAlt,   // Right alt
	0xffe5: KeyCapsLock,
	0xff14: KeyScrollLock,
	0xff7f: KeyNumLock,
	0xff61: KeyPrintScreen,
	0xff50: KeyHome,
	0xff57: KeyEnd,
	0xff55: KeyPageUp,
	0xff56: KeyPageDown,
	0xff63: KeyInsert,
}

// keysymUnshifted maps printable ASCII (0x20-0x7F, indexed by value-0x20) to
// the unshifted glyph on the same physical key of a US layout. Zero entries
// already name an unshifted key. Host key codes conventionally represent the
// unshifted key, so translated key events go through this table while typed
// characters keep the original keysym.
var keysymUnshifted = [96]byte{
	0,    // Space
	'1',  // !
	'\'', // "
	'3',  // #
	'4',  // $
	'5',  // %
	'7',  // &
	0,    // '
	'9',  // (
	'0',  // )
	'8',  // *
	'=',  // +
	0,    // ,
	0,    // -
	0,    // .
	0,    // /
	// Numerals are their own lower casing
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	';', // :
	0,   // ;
	',', // <
	0,   // =
	'.', // >
	'/', // ?
	'2', // @
	// Upper case alphabet
	'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
	'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
	0,   // [
	0,   // backslash
	0,   // ]
	'6', // ^
	'-', // _
	0,   // `
	// Lower case alphabet
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	'[',  // {
	'\\', // |
	']',  // }
	'`',  // ~
	0,    // DEL
}

// translateKeysym maps an X11 keysym to a host logical key code. Keysyms in
// the ASCII range pass through directly; keysyms in the special table map to
// their host constants; anything else is unknown and produces no event.
func translateKeysym(keysym uint32) (key int, known bool) {
	if key, ok := specialKeysyms[keysym]; ok {
		return key, true
	}
	if keysym <= 0x7f {
		return int(keysym), true
	}
	return 0, false
}

// unshiftKey normalizes a translated key code to the unshifted key it was
// typed on. Codes outside the printable ASCII range are unaffected.
func unshiftKey(key int) int {
	if key >= 0x20 && key < 0x80 {
		if unshifted := keysymUnshifted[key-0x20]; unshifted != 0 {
			return int(unshifted)
		}
	}
	return key
}
