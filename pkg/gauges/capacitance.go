// SPDX-License-Identifier: MIT

package gauges

import (
	"fmt"
	"strconv"
)

// CapacitanceCodec implements the 5-byte command / 9-byte response frames
// of the capacitance diaphragm gauges.
//
// Command frame:
//
//	[0x03, service, address, data, checksum]
//
// where checksum is the additive checksum of bytes 1..3. Response frame:
//
//	[0x07, page, status, error, pressure hi, pressure lo, read value,
//	 sensor type, checksum]
//
// The response carries no parameter identifier, so Decode relies on the
// ResponseHint produced at encode time to interpret the payload.
type CapacitanceCodec struct {
	family  Family
	catalog Catalog
}

// NewCapacitanceCodec builds a codec for a capacitance gauge. Passing
// FamilyCDGGeneric enables device type auto-detection.
func NewCapacitanceCodec(f Family) *CapacitanceCodec {
	return &CapacitanceCodec{family: f, catalog: CatalogFor(f)}
}

// Family implements Codec.
func (c *CapacitanceCodec) Family() Family { return c.family }

// Catalog implements Codec.
func (c *CapacitanceCodec) Catalog() Catalog { return c.catalog }

// Framing implements Codec.
func (c *CapacitanceCodec) Framing() FrameSpec { return c.family.Framing() }

// Encode implements Codec.
func (c *CapacitanceCodec) Encode(cmd DeviceCommand) ([]byte, ResponseHint, error) {
	def, ok := c.catalog.Lookup(cmd.Name)
	if !ok {
		return nil, ResponseHint{}, fmt.Errorf("%w: %q for family %s", ErrUnknownCommand, cmd.Name, c.family)
	}

	service := byte(def.PID >> 8)
	address := byte(def.PID & 0xFF)
	data := byte(0)
	if cmd.Kind == CommandSet {
		if !def.Writable {
			return nil, ResponseHint{}, fmt.Errorf("%w: %q is read-only", ErrEncode, cmd.Name)
		}
		n, err := strconv.ParseUint(cmd.Value(), 10, 8)
		if err != nil {
			return nil, ResponseHint{}, fmt.Errorf("%w: %q is not a byte value", ErrEncode, cmd.Value())
		}
		if def.HasRange && (float64(n) < def.Min || float64(n) > def.Max) {
			return nil, ResponseHint{}, fmt.Errorf("%w: %q value %d outside %g..%g", ErrEncode, cmd.Name, n, def.Min, def.Max)
		}
		data = byte(n)
	} else if !def.Readable {
		return nil, ResponseHint{}, fmt.Errorf("%w: %q is write-only", ErrEncode, cmd.Name)
	}

	frame := make([]byte, capCmdLen)
	frame[0], frame[1], frame[2], frame[3] = capCmdSync, service, address, data
	frame[4] = AdditiveChecksum(frame[1:4])

	return frame, ResponseHint{Command: cmd.Name, Def: &def}, nil
}

// Decode implements Codec.
func (c *CapacitanceCodec) Decode(raw []byte, hint ResponseHint) DeviceResponse {
	if len(raw) < capRespLen {
		return Fail(raw, "invalid length: %d bytes, want %d", len(raw), capRespLen)
	}
	raw = raw[:capRespLen]
	if raw[0] != capRespSync {
		return Fail(raw, "invalid sync byte: got 0x%02X, want 0x%02X", raw[0], capRespSync)
	}
	if got, want := raw[8], AdditiveChecksum(raw[1:8]); got != want {
		return Fail(raw, "checksum mismatch: got 0x%02X, want 0x%02X", got, want)
	}
	if raw[3] != 0 {
		return Fail(raw, "device error 0x%02X", raw[3])
	}

	// No parameter id in the frame: without a hint all we can offer is a
	// generic dump.
	if hint.Def == nil {
		return OK(raw, fmt.Sprintf("% X", raw[1:8]))
	}

	switch hint.Command {
	case "pressure":
		return OK(raw, fmt.Sprintf("%.5f %s", capPressure(raw), capUnit(raw[2])))
	case "status":
		return OK(raw, capStatusText(raw[2]))
	case "unit":
		return OK(raw, capUnit(raw[2]))
	case "software_version":
		v := raw[6]
		return OK(raw, fmt.Sprintf("%d.%02d", v/100, v%100))
	case "device_type":
		return c.decodeDeviceType(raw)
	default:
		return OK(raw, fmt.Sprintf("%s: %d", hint.Command, raw[6]))
	}
}

// capPressure extracts the two's-complement 16-bit pressure field and
// scales it by the 14 fractional bits.
func capPressure(raw []byte) float64 {
	v := int16(uint16(raw[4])<<8 | uint16(raw[5]))
	return float64(v) / 16384.0
}

func capUnit(status byte) string {
	switch (status & capStatusUnitMask) >> 4 {
	case 0:
		return "mbar"
	case 1:
		return "Torr"
	case 2:
		return "Pa"
	default:
		return "?"
	}
}

func capStatusText(status byte) string {
	text := fmt.Sprintf("unit=%s", capUnit(status))
	if status&capStatusHeating != 0 {
		text += ", heating"
	}
	if status&capStatusTempOK != 0 {
		text += ", temperature ok"
	}
	if status&capStatusEmission != 0 {
		text += ", emission on"
	}
	return text
}

// decodeDeviceType resolves the sensor type code. Model auto-detection
// only runs when the configured family is the generic placeholder; a
// concrete model reports its code verbatim.
func (c *CapacitanceCodec) decodeDeviceType(raw []byte) DeviceResponse {
	code := raw[7]
	if c.family != FamilyCDGGeneric {
		return OK(raw, fmt.Sprintf("type code %d", code))
	}
	model, ok := CapacitanceModelFor(code)
	if !ok {
		return Fail(raw, "unknown device type code %d", code)
	}
	return OK(raw, model.String())
}

// ProbeCommands implements Codec.
func (c *CapacitanceCodec) ProbeCommands() []DeviceCommand {
	return []DeviceCommand{
		Query("device_type"),
		Query("software_version"),
		Query("pressure"),
	}
}
