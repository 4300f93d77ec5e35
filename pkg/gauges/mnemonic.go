// SPDX-License-Identifier: MIT

package gauges

import (
	"fmt"
	"strings"
)

// AsciiMnemonicCodec implements the MKS-style ASCII protocol of the
// PPG-series transmitters.
//
// Command string:
//
//	@{address:03d}{MNEMONIC}{? or !}[value]\
//
// The address is 254 on point-to-point RS232 links and the configured
// 3-digit address when RS485 is enabled. Two firmware generations
// disagree on the response terminator (`\` alone versus `;FF` + CRLF);
// this codec emits `\` and strips either form when parsing, so it works
// against both until the target firmware is pinned down.
type AsciiMnemonicCodec struct {
	family  Family
	catalog Catalog
	address int
}

// NewAsciiMnemonicCodec builds a codec for a PPG-series transmitter.
func NewAsciiMnemonicCodec(f Family, cfg CodecConfig) *AsciiMnemonicCodec {
	addr := mnemonicDefaultAddress
	if cfg.RS485 {
		addr = cfg.Address
	}
	return &AsciiMnemonicCodec{family: f, catalog: CatalogFor(f), address: addr}
}

// Family implements Codec.
func (c *AsciiMnemonicCodec) Family() Family { return c.family }

// Catalog implements Codec.
func (c *AsciiMnemonicCodec) Catalog() Catalog { return c.catalog }

// Framing implements Codec.
func (c *AsciiMnemonicCodec) Framing() FrameSpec { return c.family.Framing() }

// Encode implements Codec.
func (c *AsciiMnemonicCodec) Encode(cmd DeviceCommand) ([]byte, ResponseHint, error) {
	def, ok := c.catalog.Lookup(cmd.Name)
	if !ok {
		return nil, ResponseHint{}, fmt.Errorf("%w: %q for family %s", ErrUnknownCommand, cmd.Name, c.family)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%c%03d%s", mnemonicPrefix, c.address, def.Mnemonic)
	if cmd.Kind == CommandSet {
		if !def.Writable {
			return nil, ResponseHint{}, fmt.Errorf("%w: %q is read-only", ErrEncode, cmd.Name)
		}
		value := strings.TrimSpace(cmd.Value())
		if value == "" {
			return nil, ResponseHint{}, fmt.Errorf("%w: %q requires a value", ErrEncode, cmd.Name)
		}
		b.WriteByte(mnemonicSet)
		b.WriteString(value)
	} else {
		if !def.Readable {
			return nil, ResponseHint{}, fmt.Errorf("%w: %q is write-only", ErrEncode, cmd.Name)
		}
		b.WriteByte(mnemonicQuery)
	}
	b.WriteByte(mnemonicTerminator)

	return []byte(b.String()), ResponseHint{Command: cmd.Name, Def: &def}, nil
}

// Decode implements Codec.
func (c *AsciiMnemonicCodec) Decode(raw []byte, hint ResponseHint) DeviceResponse {
	s := strings.TrimSpace(string(raw))
	s = strings.TrimSuffix(s, string(mnemonicTerminator))
	s = strings.TrimSuffix(s, ";FF")
	if s == "" {
		return Fail(raw, "empty response")
	}
	if s[0] != mnemonicPrefix {
		return Fail(raw, "malformed response: missing @ prefix")
	}
	s = strings.TrimLeft(s[1:], "0123456789")

	switch {
	case strings.HasPrefix(s, "NAK"):
		msg := strings.TrimSpace(strings.TrimPrefix(s, "NAK"))
		if msg == "" {
			msg = "device rejected command"
		}
		return Fail(raw, "%s", msg)

	case strings.HasPrefix(s, "ACK"):
		payload := strings.TrimSpace(strings.TrimPrefix(s, "ACK"))
		values := splitValues(payload)
		formatted := payload
		if hint.Def != nil && hint.Def.Unit != "" && payload != "" {
			formatted = payload + " " + hint.Def.Unit
		}
		return DeviceResponse{Raw: raw, Formatted: formatted, Values: values, Success: true}

	default:
		return Fail(raw, "malformed response: expected ACK or NAK, got %q", s)
	}
}

// splitValues splits a comma-separated multi-value payload.
func splitValues(payload string) []string {
	if payload == "" {
		return nil
	}
	parts := strings.Split(payload, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ProbeCommands implements Codec.
func (c *AsciiMnemonicCodec) ProbeCommands() []DeviceCommand {
	return []DeviceCommand{
		Query("device_type"),
		Query("software_version"),
		Query("pressure"),
	}
}
