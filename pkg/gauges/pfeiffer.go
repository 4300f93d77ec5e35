// SPDX-License-Identifier: MIT

package gauges

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// PfeifferBinaryCodec implements the CRC16-framed binary protocol shared
// by the seven transmitter models of the binary family.
//
// Command frame:
//
//	[addr, device id, 0x00, length, cmd, pid hi, pid lo, 0x00, 0x00,
//	 ...param bytes..., crc lo, crc hi]
//
// length is 4 + len(param bytes). The CRC covers every byte except the
// two CRC bytes and is appended little-endian. Responses use the same
// header through the pid but omit the two reserved bytes; the device sets
// its length byte so that len(frame) == length + 6.
type PfeifferBinaryCodec struct {
	family   Family
	catalog  Catalog
	deviceID byte
	address  byte
	byPID    map[int]CommandDefinition
}

// NewPfeifferBinaryCodec builds a codec for one binary transmitter model.
// The frame address byte is 0x00 on point-to-point RS232 links and the
// configured multidrop address when RS485 is enabled.
func NewPfeifferBinaryCodec(f Family, cfg CodecConfig) *PfeifferBinaryCodec {
	addr := byte(0)
	if cfg.RS485 {
		addr = byte(cfg.Address)
	}
	catalog := CatalogFor(f)
	byPID := make(map[int]CommandDefinition, len(catalog))
	for _, def := range catalog {
		byPID[def.PID] = def
	}
	return &PfeifferBinaryCodec{
		family:   f,
		catalog:  catalog,
		deviceID: f.DeviceID(),
		address:  addr,
		byPID:    byPID,
	}
}

// Family implements Codec.
func (c *PfeifferBinaryCodec) Family() Family { return c.family }

// Catalog implements Codec.
func (c *PfeifferBinaryCodec) Catalog() Catalog { return c.catalog }

// Framing implements Codec.
func (c *PfeifferBinaryCodec) Framing() FrameSpec { return c.family.Framing() }

// Encode implements Codec.
func (c *PfeifferBinaryCodec) Encode(cmd DeviceCommand) ([]byte, ResponseHint, error) {
	def, ok := c.catalog.Lookup(cmd.Name)
	if !ok {
		return nil, ResponseHint{}, fmt.Errorf("%w: %q for family %s", ErrUnknownCommand, cmd.Name, c.family)
	}

	cmdCode := byte(binaryCmdRead)
	var param []byte
	if cmd.Kind == CommandSet {
		if !def.Writable {
			return nil, ResponseHint{}, fmt.Errorf("%w: %q is read-only", ErrEncode, cmd.Name)
		}
		cmdCode = binaryCmdWrite
		var err error
		param, err = EncodeParam(def.Type, def.Width, cmd.Value())
		if err != nil {
			return nil, ResponseHint{}, err
		}
	} else if !def.Readable {
		return nil, ResponseHint{}, fmt.Errorf("%w: %q is write-only", ErrEncode, cmd.Name)
	}

	frame := make([]byte, 0, binaryHeader+len(param)+2)
	frame = append(frame,
		c.address, c.deviceID, 0x00,
		byte(4+len(param)),
		cmdCode,
		byte(def.PID>>8), byte(def.PID&0xFF),
		0x00, 0x00,
	)
	frame = append(frame, param...)
	crc := CRC16CCITT(frame)
	frame = append(frame, byte(crc&0xFF), byte(crc>>8))

	return frame, ResponseHint{Command: cmd.Name, Def: &def}, nil
}

// Decode implements Codec.
func (c *PfeifferBinaryCodec) Decode(raw []byte, hint ResponseHint) DeviceResponse {
	// The shortest well-formed response is the 7-byte header through the
	// pid plus the two CRC bytes; anything shorter cannot carry a payload
	// slice even when its length byte and CRC happen to agree.
	if len(raw) < 9 {
		return Fail(raw, "invalid length: %d bytes", len(raw))
	}
	if raw[1] != c.deviceID {
		return Fail(raw, "invalid device id: got 0x%02X, want 0x%02X", raw[1], c.deviceID)
	}
	if len(raw) != int(raw[3])+6 {
		return Fail(raw, "invalid length: frame is %d bytes, length byte implies %d", len(raw), int(raw[3])+6)
	}
	want := CRC16CCITT(raw[:len(raw)-2])
	got := uint16(raw[len(raw)-2]) | uint16(raw[len(raw)-1])<<8
	if want != got {
		return Fail(raw, "crc mismatch")
	}

	pid := int(raw[5])<<8 | int(raw[6])
	payload := raw[7 : len(raw)-2]

	def, known := c.byPID[pid]
	if !known {
		// Unknown readable fields are common across firmware revisions;
		// report the payload rather than failing.
		return OK(raw, fmt.Sprintf("pid %d: % X", pid, payload))
	}
	return c.formatPayload(raw, def, payload)
}

func (c *PfeifferBinaryCodec) formatPayload(raw []byte, def CommandDefinition, payload []byte) DeviceResponse {
	switch def.Type {
	case ParamFixedPointEn20, ParamLogFixedPointEn26:
		if len(payload) < 4 {
			return Fail(raw, "invalid length: %s payload is %d bytes, want 4", def.Name, len(payload))
		}
		rawVal := int32(binary.BigEndian.Uint32(payload))
		var v float64
		if def.Type == ParamLogFixedPointEn26 {
			v = DecodeLogEn26(rawVal)
		} else {
			v = DecodeFixedEn20(rawVal)
		}
		return OK(raw, fmt.Sprintf("%.3E %s", v, def.Unit))

	case ParamFloat32:
		if len(payload) < 4 {
			return Fail(raw, "invalid length: %s payload is %d bytes, want 4", def.Name, len(payload))
		}
		v := math.Float32frombits(binary.BigEndian.Uint32(payload))
		return OK(raw, fmt.Sprintf("%.1f %s", v, def.Unit))

	case ParamUInt16:
		if len(payload) < 2 {
			return Fail(raw, "invalid length: %s payload is %d bytes, want 2", def.Name, len(payload))
		}
		v := binary.BigEndian.Uint16(payload)
		if def.PID == pidErrorStatus {
			return OK(raw, formatErrorBits(v))
		}
		return OK(raw, fmt.Sprintf("%d", v))

	case ParamAsciiFixedWidth:
		return OK(raw, strings.TrimRight(string(payload), " \x00"))

	default:
		text, err := DecodeParam(def.Type, def.Width, payload)
		if err != nil {
			return Fail(raw, "invalid %s payload: %v", def.Name, err)
		}
		if def.Unit != "" {
			text += " " + def.Unit
		}
		return OK(raw, text)
	}
}

// Error status bit assignments for the binary transmitters.
var binaryErrorBits = []struct {
	mask uint16
	name string
}{
	{0x0001, "sensor error"},
	{0x0002, "sensor off"},
	{0x0004, "calibration error"},
	{0x0008, "memory error"},
	{0x0010, "supply voltage low"},
	{0x0020, "temperature out of range"},
}

func formatErrorBits(v uint16) string {
	if v == 0 {
		return "no error"
	}
	var parts []string
	for _, bit := range binaryErrorBits {
		if v&bit.mask != 0 {
			parts = append(parts, bit.name)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("error bits 0x%04X", v)
	}
	return fmt.Sprintf("0x%04X: %s", v, strings.Join(parts, ", "))
}

// ProbeCommands implements Codec.
func (c *PfeifferBinaryCodec) ProbeCommands() []DeviceCommand {
	return []DeviceCommand{
		Query("product_name"),
		Query("software_version"),
		Query("pressure"),
	}
}
