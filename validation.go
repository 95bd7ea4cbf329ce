// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"fmt"
	"unicode"
)

// InputValidator validates network input data and prevents protocol vulnerabilities.
type InputValidator struct{}

// newInputValidator creates a new input validator for network input data.
func newInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateProtocolVersion validates RFB protocol version strings.
func (iv *InputValidator) ValidateProtocolVersion(version string) error {
	if len(version) != 12 {
		return validationError("InputValidator.ValidateProtocolVersion",
			fmt.Sprintf("protocol version must be exactly 12 characters, got %d", len(version)), nil)
	}

	if version[:4] != "RFB " {
		return validationError("InputValidator.ValidateProtocolVersion",
			"protocol version must start with 'RFB '", nil)
	}

	if version[11] != '\n' {
		return validationError("InputValidator.ValidateProtocolVersion",
			"protocol version must end with newline", nil)
	}

	versionPart := version[4:11]
	if versionPart[3] != '.' {
		return validationError("InputValidator.ValidateProtocolVersion",
			"protocol version format must be XXX.YYY", nil)
	}

	for i, char := range versionPart {
		if i == 3 {
			continue
		}
		if !unicode.IsDigit(char) {
			return validationError("InputValidator.ValidateProtocolVersion",
				"protocol version must contain only digits and dot", nil)
		}
	}

	return nil
}

// ValidateFramebufferSize validates framebuffer dimensions.
func (iv *InputValidator) ValidateFramebufferSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return validationError("InputValidator.ValidateFramebufferSize",
			fmt.Sprintf("framebuffer dimensions must be positive, got %dx%d", width, height), nil)
	}

	if width > 65535 || height > 65535 {
		return validationError("InputValidator.ValidateFramebufferSize",
			fmt.Sprintf("framebuffer dimensions exceed protocol maximum, got %dx%d", width, height), nil)
	}

	return nil
}

// ValidateDesktopName validates the name advertised in the ServerInit message.
func (iv *InputValidator) ValidateDesktopName(name string) error {
	if name == "" {
		return validationError("InputValidator.ValidateDesktopName",
			"desktop name cannot be empty", nil)
	}

	if len(name) > 255 {
		return validationError("InputValidator.ValidateDesktopName",
			fmt.Sprintf("desktop name too long: %d bytes", len(name)), nil)
	}

	for _, char := range name {
		if char < 0x20 || char > 0x7e {
			return validationError("InputValidator.ValidateDesktopName",
				"desktop name must contain only printable ASCII", nil)
		}
	}

	return nil
}

// ValidatePixelFormat validates a client-supplied pixel format against what
// the raw and tight encoders can emit.
func (iv *InputValidator) ValidatePixelFormat(pf PixelFormat) error {
	if !pf.TrueColor {
		return validationError("InputValidator.ValidatePixelFormat",
			"palette-mapped client pixel formats are not supported", nil)
	}

	if pf.BPP != 32 {
		return validationError("InputValidator.ValidatePixelFormat",
			fmt.Sprintf("unsupported bits-per-pixel %d, only 32 is supported", pf.BPP), nil)
	}

	return nil
}
