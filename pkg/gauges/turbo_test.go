// SPDX-License-Identifier: MIT

package gauges

import (
	"fmt"
	"strings"
	"testing"
)

// buildTurboResponse assembles a controller-side telegram with a valid
// trailing checksum.
func buildTurboResponse(addr, action, pid int, data string) []byte {
	body := fmt.Sprintf("%03d%02d%03d%02d%s", addr, action, pid, len(data), data)
	return []byte(body + fmt.Sprintf("%03d", AdditiveChecksum([]byte(body))) + "\r")
}

func TestTurboEncode_SetSpeed(t *testing.T) {
	codec := NewTurboAsciiCodec(FamilyTC600, CodecConfig{})

	frame, hint, err := codec.Encode(Set("set_speed", "50"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	s := string(frame)
	if !strings.HasSuffix(s, "\r") {
		t.Error("telegram should end with CR")
	}
	if !strings.Contains(s, "000050") {
		t.Errorf("u_integer data field should be 6-digit zero-padded, got %q", s)
	}
	if !strings.Contains(s, "10708") {
		t.Errorf("telegram should carry write action 10 and pid 708, got %q", s)
	}

	body := s[:len(s)-4]
	cks := s[len(s)-4 : len(s)-1]
	if want := fmt.Sprintf("%03d", AdditiveChecksum([]byte(body))); cks != want {
		t.Errorf("checksum should be the mod-256 ASCII sum of the body: got %s, want %s", cks, want)
	}
	if hint.Command != "set_speed" {
		t.Errorf("hint should carry the command name, got %q", hint.Command)
	}
}

func TestTurboEncode_Read(t *testing.T) {
	codec := NewTurboAsciiCodec(FamilyTC600, CodecConfig{})
	frame, _, err := codec.Encode(Query("actual_speed"))
	if err != nil {
		t.Fatal(err)
	}
	s := string(frame)
	if !strings.HasPrefix(s, "00100309") {
		t.Errorf("read telegram should start with addr 001, action 00, pid 309, got %q", s)
	}
	if !strings.Contains(s, "02=?") {
		t.Errorf("read telegram should carry the =? placeholder, got %q", s)
	}
}

func TestTurboEncode_BooleanField(t *testing.T) {
	codec := NewTurboAsciiCodec(FamilyTC600, CodecConfig{})

	frame, _, err := codec.Encode(Set("motor_pump", "on"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(frame), "06111111") {
		t.Errorf("boolean on should encode as six ones, got %q", string(frame))
	}

	frame, _, err = codec.Encode(Set("motor_pump", "off"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(frame), "06000000") {
		t.Errorf("boolean off should encode as six zeros, got %q", string(frame))
	}
}

func TestTurboEncode_RangeCheck(t *testing.T) {
	codec := NewTurboAsciiCodec(FamilyTC600, CodecConfig{})
	if _, _, err := codec.Encode(Set("set_speed", "150")); err == nil {
		t.Fatal("expected range error for 150% speed setpoint")
	}
}

func TestTurboDecode_Integer(t *testing.T) {
	codec := NewTurboAsciiCodec(FamilyTC600, CodecConfig{})
	hint := queryHint(t, codec, "actual_speed")

	resp := codec.Decode(buildTurboResponse(1, 0, 309, "000833"), hint)
	if !resp.Success {
		t.Fatalf("decode failed: %s", resp.Err)
	}
	if resp.Formatted != "833 Hz" {
		t.Errorf("u_integer should decode with unit, got %q", resp.Formatted)
	}
}

func TestTurboDecode_Real(t *testing.T) {
	codec := NewTurboAsciiCodec(FamilyTC600, CodecConfig{})
	hint := queryHint(t, codec, "drive_current")

	resp := codec.Decode(buildTurboResponse(1, 0, 310, "000245"), hint)
	if !resp.Success {
		t.Fatalf("decode failed: %s", resp.Err)
	}
	if resp.Formatted != "2.45 A" {
		t.Errorf("u_real is scaled by 100, got %q", resp.Formatted)
	}
}

func TestTurboDecode_Boolean(t *testing.T) {
	codec := NewTurboAsciiCodec(FamilyTC600, CodecConfig{})
	hint := queryHint(t, codec, "motor_pump")

	resp := codec.Decode(buildTurboResponse(1, 10, 23, "111111"), hint)
	if !resp.Success {
		t.Fatalf("decode failed: %s", resp.Err)
	}
	if resp.Formatted != "on" {
		t.Errorf("six ones should decode to on, got %q", resp.Formatted)
	}
}

func TestTurboDecode_ErrorMarkers(t *testing.T) {
	codec := NewTurboAsciiCodec(FamilyTC600, CodecConfig{})

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"unknown parameter", "NO_DEF", "unknown parameter"},
		{"out of range", "_RANGE", "value out of range"},
		{"logic error", "_LOGIC", "command logic error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := codec.Decode(buildTurboResponse(1, 0, 309, tt.data), ResponseHint{})
			if resp.Success {
				t.Fatal("error marker should fail decode")
			}
			if resp.Err != tt.wantErr {
				t.Errorf("got error %q, want %q", resp.Err, tt.wantErr)
			}
		})
	}
}

func TestTurboDecode_BadFrames(t *testing.T) {
	codec := NewTurboAsciiCodec(FamilyTC600, CodecConfig{})

	t.Run("too short", func(t *testing.T) {
		resp := codec.Decode([]byte("00100\r"), ResponseHint{})
		if resp.Success || !strings.Contains(resp.Err, "too short") {
			t.Errorf("expected too-short failure, got %+v", resp)
		}
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		raw := buildTurboResponse(1, 0, 309, "000833")
		raw[0] = '9'
		resp := codec.Decode(raw, ResponseHint{})
		if resp.Success || !strings.Contains(resp.Err, "checksum mismatch") {
			t.Errorf("expected checksum failure, got %+v", resp)
		}
	})
}

func TestTurboDecode_PIDFallbackWithoutHint(t *testing.T) {
	codec := NewTurboAsciiCodec(FamilyTC600, CodecConfig{})

	resp := codec.Decode(buildTurboResponse(1, 0, 309, "000100"), ResponseHint{})
	if !resp.Success {
		t.Fatalf("decode failed: %s", resp.Err)
	}
	if resp.Formatted != "100 Hz" {
		t.Errorf("decoder should fall back to the echoed pid, got %q", resp.Formatted)
	}
}
