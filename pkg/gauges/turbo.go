// SPDX-License-Identifier: MIT

package gauges

import (
	"fmt"
	"strconv"
	"strings"
)

// TurboAsciiCodec implements the fixed-width ASCII telegram protocol of
// the turbo pump controller.
//
// Telegram:
//
//	{addr:03d}{action:02d}{pid:03d}{len:02d}{data}{checksum:03d}\r
//
// action 00 reads (data "=?"), action 10 writes. The checksum is the sum
// of the ASCII byte values of everything before it, modulo 256, written
// as a 3-digit decimal.
type TurboAsciiCodec struct {
	family  Family
	catalog Catalog
	address int
	byPID   map[int]CommandDefinition
}

// NewTurboAsciiCodec builds a codec for the pump controller. The default
// telegram address is 1; RS485 replaces it with the configured address.
func NewTurboAsciiCodec(f Family, cfg CodecConfig) *TurboAsciiCodec {
	addr := 1
	if cfg.RS485 {
		addr = cfg.Address
	}
	catalog := CatalogFor(f)
	byPID := make(map[int]CommandDefinition, len(catalog))
	for _, def := range catalog {
		byPID[def.PID] = def
	}
	return &TurboAsciiCodec{family: f, catalog: catalog, address: addr, byPID: byPID}
}

// Family implements Codec.
func (c *TurboAsciiCodec) Family() Family { return c.family }

// Catalog implements Codec.
func (c *TurboAsciiCodec) Catalog() Catalog { return c.catalog }

// Framing implements Codec.
func (c *TurboAsciiCodec) Framing() FrameSpec { return c.family.Framing() }

// Encode implements Codec.
func (c *TurboAsciiCodec) Encode(cmd DeviceCommand) ([]byte, ResponseHint, error) {
	def, ok := c.catalog.Lookup(cmd.Name)
	if !ok {
		return nil, ResponseHint{}, fmt.Errorf("%w: %q for family %s", ErrUnknownCommand, cmd.Name, c.family)
	}

	action := turboActionRead
	data := "=?"
	if cmd.Kind == CommandSet {
		if !def.Writable {
			return nil, ResponseHint{}, fmt.Errorf("%w: %q is read-only", ErrEncode, cmd.Name)
		}
		action = turboActionWrite
		var err error
		data, err = encodeTurboField(def, cmd.Value())
		if err != nil {
			return nil, ResponseHint{}, err
		}
	} else if !def.Readable {
		return nil, ResponseHint{}, fmt.Errorf("%w: %q is write-only", ErrEncode, cmd.Name)
	}

	telegram := fmt.Sprintf("%03d%02d%03d%02d%s", c.address, action, def.PID, len(data), data)
	telegram += fmt.Sprintf("%03d", AdditiveChecksum([]byte(telegram)))
	telegram += "\r"

	return []byte(telegram), ResponseHint{Command: cmd.Name, Def: &def}, nil
}

// encodeTurboField renders a value in the controller's fixed-width data
// field encoding for the definition's type.
func encodeTurboField(def CommandDefinition, value string) (string, error) {
	switch def.Type {
	case ParamBool:
		on, err := parseBool(value)
		if err != nil {
			return "", err
		}
		if on {
			return strings.Repeat("1", turboDataWidth), nil
		}
		return strings.Repeat("0", turboDataWidth), nil

	case ParamUInt16, ParamUInt32:
		n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
		if err != nil || n > 999999 {
			return "", fmt.Errorf("%w: %q is not a valid integer field", ErrEncode, value)
		}
		if def.HasRange && (float64(n) < def.Min || float64(n) > def.Max) {
			return "", fmt.Errorf("%w: %q value %d outside %g..%g", ErrEncode, def.Name, n, def.Min, def.Max)
		}
		return fmt.Sprintf("%06d", n), nil

	case ParamFloat32:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a number", ErrEncode, value)
		}
		n := int64(f*100 + 0.5)
		if n < 0 || n > 999999 {
			return "", fmt.Errorf("%w: %q out of field range", ErrEncode, value)
		}
		return fmt.Sprintf("%06d", n), nil

	case ParamAsciiFixedWidth:
		if len(value) > turboDataWidth {
			return "", fmt.Errorf("%w: %q exceeds %d characters", ErrEncode, value, turboDataWidth)
		}
		return fmt.Sprintf("%-*s", turboDataWidth, value), nil

	default:
		return "", fmt.Errorf("%w: %v in turbo telegram", ErrUnsupportedParamType, def.Type)
	}
}

// Decode implements Codec.
func (c *TurboAsciiCodec) Decode(raw []byte, hint ResponseHint) DeviceResponse {
	s := strings.TrimRight(string(raw), "\r\n")
	if len(s) < turboMinResponse {
		return Fail(raw, "response too short: %d characters", len(s))
	}

	// In-band error markers take precedence over field parsing.
	switch {
	case strings.Contains(s, turboErrNoDef):
		return Fail(raw, "unknown parameter")
	case strings.Contains(s, turboErrRange):
		return Fail(raw, "value out of range")
	case strings.Contains(s, turboErrLogic):
		return Fail(raw, "command logic error")
	}

	body, cks := s[:len(s)-3], s[len(s)-3:]
	want := fmt.Sprintf("%03d", AdditiveChecksum([]byte(body)))
	if cks != want {
		return Fail(raw, "checksum mismatch: got %s, want %s", cks, want)
	}

	if len(body) < 10 {
		return Fail(raw, "response too short: %d characters before checksum", len(body))
	}
	dataLen, err := strconv.Atoi(body[8:10])
	if err != nil || len(body) < 10+dataLen {
		return Fail(raw, "invalid data length field %q", body[8:10])
	}
	data := body[10 : 10+dataLen]

	def := hint.Def
	if def == nil {
		// Fall back to the echoed pid for unsolicited telegrams.
		if pid, err := strconv.Atoi(body[5:8]); err == nil {
			if d, ok := c.byPID[pid]; ok {
				def = &d
			}
		}
	}
	if def == nil {
		return OK(raw, data)
	}

	text, err := decodeTurboField(*def, data)
	if err != nil {
		return Fail(raw, "invalid %s field %q: %v", def.Name, data, err)
	}
	if def.Unit != "" {
		text += " " + def.Unit
	}
	return OK(raw, text)
}

func decodeTurboField(def CommandDefinition, data string) (string, error) {
	switch def.Type {
	case ParamBool:
		switch data {
		case strings.Repeat("1", turboDataWidth):
			return "on", nil
		case strings.Repeat("0", turboDataWidth):
			return "off", nil
		}
		return "", fmt.Errorf("not a boolean field")

	case ParamUInt16, ParamUInt32:
		n, err := strconv.ParseUint(strings.TrimSpace(data), 10, 32)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(n, 10), nil

	case ParamFloat32:
		n, err := strconv.ParseUint(strings.TrimSpace(data), 10, 32)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(float64(n)/100, 'f', 2, 64), nil

	case ParamAsciiFixedWidth:
		return strings.TrimSpace(data), nil

	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedParamType, def.Type)
	}
}

// ProbeCommands implements Codec.
func (c *TurboAsciiCodec) ProbeCommands() []DeviceCommand {
	return []DeviceCommand{
		Query("firmware_version"),
		Query("actual_speed"),
	}
}
