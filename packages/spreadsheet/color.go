package spreadsheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidColor = errors.New("invalid color")

// FormatColor renders an ARGB color as eight upper case hex digits
func FormatColor(color uint32) string {
	return fmt.Sprintf("%08X", color)
}

// ParseColor parses an ARGB color written as hex digits, with an optional
// leading '#'. six digits are read as RGB with an opaque alpha channel.
func ParseColor(text string) (uint32, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(text), "#")
	if len(digits) != 6 && len(digits) != 8 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, text)
	}

	color, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, text)
	}
	if len(digits) == 6 {
		color |= 0xFF000000
	}
	return uint32(color), nil
}

// RGB returns the color without its alpha channel as six hex digits
func RGB(color uint32) string {
	return fmt.Sprintf("%06X", color&0x00FFFFFF)
}
