// SPDX-License-Identifier: MIT

package gauges

// Codec builds outbound frames from device commands and decodes inbound
// bytes into structured responses for one protocol family. A codec is
// created once per connection and is not safe for concurrent use.
type Codec interface {
	// Family returns the device family the codec was built for.
	Family() Family
	// Catalog returns the family's immutable command table.
	Catalog() Catalog
	// Encode builds the wire frame for a command. The returned hint must
	// be passed unchanged to the Decode call for the matching response.
	Encode(cmd DeviceCommand) ([]byte, ResponseHint, error)
	// Decode validates and interprets an inbound frame. Structural
	// failures (wrong id, wrong length, bad checksum) are reported in the
	// response, never panicked.
	Decode(raw []byte, hint ResponseHint) DeviceResponse
	// Framing describes how the family terminates response frames.
	Framing() FrameSpec
	// ProbeCommands returns a small set of read-only commands used to test
	// whether a link is alive.
	ProbeCommands() []DeviceCommand
}

// CodecConfig carries the link-level settings a codec needs at
// construction time.
type CodecConfig struct {
	// RS485 enables multidrop addressing; Address is the 1-254 drop
	// address written into each frame.
	RS485   bool
	Address int
}

// NewCodec constructs the codec variant for a family. The catalog is the
// shared immutable table for that family.
func NewCodec(f Family, cfg CodecConfig) Codec {
	switch f.Protocol() {
	case ProtocolCapacitance:
		return NewCapacitanceCodec(f)
	case ProtocolMnemonic:
		return NewAsciiMnemonicCodec(f, cfg)
	case ProtocolTurbo:
		return NewTurboAsciiCodec(f, cfg)
	default:
		return NewPfeifferBinaryCodec(f, cfg)
	}
}

// ProbeFrames encodes a codec's probe commands to raw frames, for callers
// that test a link without going through the command path.
func ProbeFrames(c Codec) [][]byte {
	var frames [][]byte
	for _, cmd := range c.ProbeCommands() {
		frame, _, err := c.Encode(cmd)
		if err != nil {
			continue
		}
		frames = append(frames, frame)
	}
	return frames
}
