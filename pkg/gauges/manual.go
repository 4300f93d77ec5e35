// SPDX-License-Identifier: MIT

package gauges

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ManualFormat classifies free-text diagnostic input for the "send
// anything" path. It is independent of any command catalog.
type ManualFormat int

// Manual input/display formats, in classification priority order.
const (
	FormatBinary ManualFormat = iota
	FormatHexPrefixed
	FormatHexEscaped
	FormatDecimal
	FormatDecimalCsv
	FormatHex
	FormatAscii
)

func (f ManualFormat) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatHexPrefixed:
		return "hex (0x)"
	case FormatHexEscaped:
		return "hex (\\x)"
	case FormatDecimal:
		return "decimal"
	case FormatDecimalCsv:
		return "decimal csv"
	case FormatHex:
		return "hex"
	default:
		return "ascii"
	}
}

// ClassifyManual guesses the byte format of free-text user input. The
// ASCII fallback always succeeds, so classification never fails.
func ClassifyManual(text string) (ManualFormat, string) {
	trimmed := strings.TrimSpace(text)
	compact := strings.Join(strings.Fields(trimmed), "")

	switch {
	case compact != "" && isBinaryDigits(compact):
		return FormatBinary, compact
	case strings.Contains(trimmed, "0x") || strings.Contains(trimmed, "0X"):
		return FormatHexPrefixed, trimmed
	case strings.Contains(trimmed, `\x`):
		return FormatHexEscaped, trimmed
	case allDecimalTokens(strings.Fields(trimmed)):
		return FormatDecimal, trimmed
	case strings.Contains(trimmed, ",") && allDecimalTokens(splitCsv(trimmed)):
		return FormatDecimalCsv, trimmed
	case compact != "" && isHexDigits(compact):
		return FormatHex, compact
	default:
		return FormatAscii, trimmed
	}
}

// ManualToBytes converts classified text to the raw bytes to transmit.
func ManualToBytes(f ManualFormat, text string) ([]byte, error) {
	switch f {
	case FormatBinary:
		bits := strings.Join(strings.Fields(text), "")
		if bits == "" || !isBinaryDigits(bits) {
			return nil, fmt.Errorf("%w: %q is not a bit string", ErrConversion, text)
		}
		// Pad on the right to a whole number of octets.
		for len(bits)%8 != 0 {
			bits += "0"
		}
		out := make([]byte, len(bits)/8)
		for i := range out {
			n, _ := strconv.ParseUint(bits[i*8:i*8+8], 2, 8)
			out[i] = byte(n)
		}
		return out, nil

	case FormatHexPrefixed:
		cleaned := strings.ReplaceAll(text, "0x", "")
		cleaned = strings.ReplaceAll(cleaned, "0X", "")
		return hexToBytes(cleaned)

	case FormatHexEscaped:
		return hexToBytes(strings.ReplaceAll(text, `\x`, ""))

	case FormatHex:
		return hexToBytes(text)

	case FormatDecimal, FormatDecimalCsv:
		tokens := strings.Fields(text)
		if f == FormatDecimalCsv {
			tokens = splitCsv(text)
		}
		out := make([]byte, 0, len(tokens))
		for _, tok := range tokens {
			n, err := strconv.ParseUint(tok, 10, 16)
			if err != nil || n > 255 {
				return nil, fmt.Errorf("%w: %q is not a byte value (0-255)", ErrConversion, tok)
			}
			out = append(out, byte(n))
		}
		return out, nil

	case FormatAscii:
		for _, r := range text {
			if r > 127 {
				return nil, fmt.Errorf("%w: %q is not 7-bit ASCII", ErrConversion, text)
			}
		}
		return []byte(text), nil

	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrConversion, f)
	}
}

// SuggestDisplayFormat picks a readable rendering for received bytes.
// Purely advisory.
func SuggestDisplayFormat(data []byte) ManualFormat {
	if len(data) == 0 {
		return FormatHex
	}
	printable := true
	anyHigh := false
	allSmall := true
	for _, b := range data {
		if b > 127 {
			anyHigh = true
		}
		if b >= 100 {
			allSmall = false
		}
		if !(b == '\r' || b == '\n' || (b >= 0x20 && b <= 0x7E)) {
			printable = false
		}
	}
	switch {
	case printable:
		return FormatAscii
	case anyHigh:
		return FormatHex
	case allSmall:
		return FormatDecimal
	default:
		return FormatHex
	}
}

// RenderBytes formats raw bytes in the given display format.
func RenderBytes(f ManualFormat, data []byte) string {
	switch f {
	case FormatBinary:
		parts := make([]string, len(data))
		for i, b := range data {
			parts[i] = fmt.Sprintf("%08b", b)
		}
		return strings.Join(parts, " ")
	case FormatDecimal, FormatDecimalCsv:
		parts := make([]string, len(data))
		for i, b := range data {
			parts[i] = strconv.Itoa(int(b))
		}
		sep := " "
		if f == FormatDecimalCsv {
			sep = ","
		}
		return strings.Join(parts, sep)
	case FormatAscii:
		return string(data)
	default:
		return fmt.Sprintf("% X", data)
	}
}

func hexToBytes(s string) ([]byte, error) {
	cleaned := strings.Join(strings.Fields(s), "")
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty hex input", ErrConversion)
	}
	if len(cleaned)%2 != 0 {
		cleaned = "0" + cleaned
	}
	out, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return out, nil
}

func isBinaryDigits(s string) bool {
	for _, r := range s {
		if r != '0' && r != '1' {
			return false
		}
	}
	return true
}

func isHexDigits(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func allDecimalTokens(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if tok == "" {
			return false
		}
		for _, r := range tok {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

func splitCsv(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
