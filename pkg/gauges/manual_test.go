// SPDX-License-Identifier: MIT

package gauges

import (
	"bytes"
	"errors"
	"testing"
)

func TestClassifyManual(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ManualFormat
	}{
		{"binary digits", "10101010", FormatBinary},
		{"binary with spaces", "1010 1010", FormatBinary},
		{"hex prefixed", "0x03 0x00", FormatHexPrefixed},
		{"hex escaped", `\x03\x00\x10`, FormatHexEscaped},
		{"decimal tokens", "3 0 16 0", FormatDecimal},
		{"decimal csv", "3,0,16,0", FormatDecimalCsv},
		{"bare hex", "48 65 6C 6C 6F", FormatHex},
		{"ascii fallback", "PR3?", FormatAscii},
		{"ascii sentence", "hello world!", FormatAscii},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ClassifyManual(tt.text)
			if got != tt.want {
				t.Errorf("classify(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestManualToBytes(t *testing.T) {
	tests := []struct {
		name   string
		format ManualFormat
		text   string
		want   []byte
	}{
		{"binary pads right", FormatBinary, "1", []byte{0x80}},
		{"binary full byte", FormatBinary, "10101010", []byte{0xAA}},
		{"binary two bytes", FormatBinary, "111111110", []byte{0xFF, 0x00}},
		{"hex prefixed", FormatHexPrefixed, "0x03 0x00", []byte{0x03, 0x00}},
		{"hex escaped", FormatHexEscaped, `\x03\x10`, []byte{0x03, 0x10}},
		{"bare hex", FormatHex, "48 65 6C", []byte{0x48, 0x65, 0x6C}},
		{"odd hex gets leading zero", FormatHex, "F", []byte{0x0F}},
		{"decimal", FormatDecimal, "3 0 16", []byte{3, 0, 16}},
		{"decimal csv", FormatDecimalCsv, "3,0,255", []byte{3, 0, 255}},
		{"ascii", FormatAscii, "PR3?", []byte("PR3?")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ManualToBytes(tt.format, tt.text)
			if err != nil {
				t.Fatalf("to_bytes: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("to_bytes(%q) = % X, want % X", tt.text, got, tt.want)
			}
		})
	}
}

func TestManualToBytes_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format ManualFormat
		text   string
	}{
		{"decimal out of range", FormatDecimal, "12 256"},
		{"csv out of range", FormatDecimalCsv, "1,999"},
		{"non-ascii input", FormatAscii, "température"},
		{"bad hex", FormatHex, "zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ManualToBytes(tt.format, tt.text); !errors.Is(err, ErrConversion) {
				t.Errorf("expected ErrConversion, got %v", err)
			}
		})
	}
}

func TestSuggestDisplayFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want ManualFormat
	}{
		{"printable text", []byte("ACK 1.0E-3\r\n"), FormatAscii},
		{"high bytes", []byte{0x01, 0x80, 0xFF}, FormatHex},
		{"small values", []byte{1, 2, 3, 99}, FormatDecimal},
		{"mixed mid-range", []byte{0x01, 0x05, 0x7F}, FormatHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuggestDisplayFormat(tt.data); got != tt.want {
				t.Errorf("suggest(% X) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestRenderBytes(t *testing.T) {
	data := []byte{0x48, 0x69}
	if got := RenderBytes(FormatAscii, data); got != "Hi" {
		t.Errorf("ascii render: got %q", got)
	}
	if got := RenderBytes(FormatHex, data); got != "48 69" {
		t.Errorf("hex render: got %q", got)
	}
	if got := RenderBytes(FormatDecimal, data); got != "72 105" {
		t.Errorf("decimal render: got %q", got)
	}
	if got := RenderBytes(FormatBinary, data); got != "01001000 01101001" {
		t.Errorf("binary render: got %q", got)
	}
}
