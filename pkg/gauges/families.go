// SPDX-License-Identifier: MIT

package gauges

import (
	"fmt"
	"strings"
	"time"
)

// Family identifies a supported device model. Each family fixes the wire
// protocol, the command catalog, and the serial line parameters.
type Family int

// Supported device families
const (
	// Binary transmitters (CRC16-framed protocol)
	FamilyPCG550 Family = iota // Pirani capacitance combination
	FamilyPSG550               // Pirani standard
	FamilyMAG500               // cold cathode
	FamilyMPG500               // Pirani / cold cathode combination
	FamilyBPG402               // Bayard-Alpert Pirani
	FamilyBPG552               // Bayard-Alpert Pirani, current series
	FamilyBCG552               // all-in-one combination

	// Capacitance diaphragm gauges (5-byte/9-byte frames)
	FamilyCDGGeneric // placeholder until the device type probe resolves it
	FamilyCDG025D
	FamilyCDG045D
	FamilyCDG100D
	FamilyCDG160D
	FamilyCDG200D

	// ASCII mnemonic transmitters
	FamilyPPG550
	FamilyPPG570

	// Turbo pump controller (fixed-width ASCII telegrams)
	FamilyTC600
)

var familyNames = map[Family]string{
	FamilyPCG550:     "PCG550",
	FamilyPSG550:     "PSG550",
	FamilyMAG500:     "MAG500",
	FamilyMPG500:     "MPG500",
	FamilyBPG402:     "BPG402",
	FamilyBPG552:     "BPG552",
	FamilyBCG552:     "BCG552",
	FamilyCDGGeneric: "CDG",
	FamilyCDG025D:    "CDG025D",
	FamilyCDG045D:    "CDG045D",
	FamilyCDG100D:    "CDG100D",
	FamilyCDG160D:    "CDG160D",
	FamilyCDG200D:    "CDG200D",
	FamilyPPG550:     "PPG550",
	FamilyPPG570:     "PPG570",
	FamilyTC600:      "TC600",
}

func (f Family) String() string {
	if n, ok := familyNames[f]; ok {
		return n
	}
	return "unknown"
}

// ParseFamily resolves a family from its model name, case-insensitively.
func ParseFamily(name string) (Family, error) {
	for f, n := range familyNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown device family %q", name)
}

// FamilyNames returns all supported model names in catalog order.
func FamilyNames() []string {
	order := []Family{
		FamilyPCG550, FamilyPSG550, FamilyMAG500, FamilyMPG500,
		FamilyBPG402, FamilyBPG552, FamilyBCG552,
		FamilyCDGGeneric, FamilyCDG025D, FamilyCDG045D, FamilyCDG100D,
		FamilyCDG160D, FamilyCDG200D,
		FamilyPPG550, FamilyPPG570, FamilyTC600,
	}
	names := make([]string, 0, len(order))
	for _, f := range order {
		names = append(names, f.String())
	}
	return names
}

// Protocol returns the wire protocol shape this family speaks.
func (f Family) Protocol() Protocol {
	switch f {
	case FamilyCDGGeneric, FamilyCDG025D, FamilyCDG045D, FamilyCDG100D,
		FamilyCDG160D, FamilyCDG200D:
		return ProtocolCapacitance
	case FamilyPPG550, FamilyPPG570:
		return ProtocolMnemonic
	case FamilyTC600:
		return ProtocolTurbo
	default:
		return ProtocolBinary
	}
}

// DeviceID returns the second frame byte the binary transmitters echo in
// every response. Zero for families that do not use it.
func (f Family) DeviceID() byte {
	switch f {
	case FamilyPCG550:
		return 0x02
	case FamilyPSG550:
		return 0x03
	case FamilyMAG500:
		return 0x14
	case FamilyMPG500:
		return 0x04
	case FamilyBPG402:
		return 0x05
	case FamilyBPG552:
		return 0x0A
	case FamilyBCG552:
		return 0x0B
	default:
		return 0
	}
}

// PressureType returns the fixed-point encoding of the family's pressure
// reading. Pirani-only transmitters use the linear en-20 encoding; cold
// cathode and combination gauges need the logarithmic en-26 encoding for
// their wider dynamic range.
func (f Family) PressureType() ParamType {
	switch f {
	case FamilyPCG550, FamilyPSG550:
		return ParamFixedPointEn20
	default:
		return ParamLogFixedPointEn26
	}
}

// SerialSettings are the line parameters a family expects. They are
// consumed when the port is opened and only renegotiated through an
// explicit reconfigure while the transport is idle.
type SerialSettings struct {
	BaudRate    int
	DataBits    int
	Parity      Parity
	StopBits    StopBits
	ReadTimeout time.Duration
}

// Parity mirrors the serial line parity setting without binding the
// protocol package to a particular serial library.
type Parity int

// Parity values
const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// StopBits mirrors the serial stop bit setting.
type StopBits int

// Stop bit values
const (
	StopBitsOne StopBits = iota
	StopBitsTwo
)

// Serial returns the family's fixed line parameters.
func (f Family) Serial() SerialSettings {
	s := SerialSettings{
		BaudRate:    9600,
		DataBits:    8,
		Parity:      ParityNone,
		StopBits:    StopBitsOne,
		ReadTimeout: 2 * time.Second,
	}
	switch f.Protocol() {
	case ProtocolBinary:
		s.BaudRate = 115200
		s.ReadTimeout = time.Second
	case ProtocolCapacitance:
		s.BaudRate = 9600
	case ProtocolMnemonic:
		s.BaudRate = 9600
	case ProtocolTurbo:
		s.BaudRate = 9600
	}
	return s
}

// BaudCandidates returns the descending baud rate list used for link
// discovery, with the family default first.
func (f Family) BaudCandidates() []int {
	def := f.Serial().BaudRate
	candidates := []int{def}
	for _, b := range []int{115200, 57600, 38400, 19200, 9600} {
		if b != def {
			candidates = append(candidates, b)
		}
	}
	return candidates
}

// FrameKind selects the read strategy that recognizes a complete inbound
// frame for a protocol.
type FrameKind int

// Frame read strategies
const (
	// FrameIdle accumulates bytes until the line goes quiet.
	FrameIdle FrameKind = iota
	// FrameFixed scans for a sync byte, then reads a fixed byte count.
	FrameFixed
	// FrameTerminator accumulates bytes until a terminator sequence.
	FrameTerminator
)

// FrameSpec describes how a family terminates its response frames.
type FrameSpec struct {
	Kind       FrameKind
	Sync       byte
	Length     int
	Terminator []byte
	// NAKPrefix marks variable-length negative responses that may contain
	// the terminator byte in their payload.
	NAKPrefix []byte
}

// Framing returns the response frame recognition strategy for the family.
func (f Family) Framing() FrameSpec {
	switch f.Protocol() {
	case ProtocolCapacitance:
		return FrameSpec{Kind: FrameFixed, Sync: capRespSync, Length: capRespLen}
	case ProtocolMnemonic:
		return FrameSpec{
			Kind:       FrameTerminator,
			Terminator: []byte{mnemonicTerminator},
			NAKPrefix:  []byte("@NAK"),
		}
	case ProtocolTurbo:
		return FrameSpec{Kind: FrameTerminator, Terminator: []byte{'\r'}}
	default:
		// Binary responses are length-prefixed with no sync byte, so the
		// only safe strategy is waiting for the line to go idle.
		return FrameSpec{Kind: FrameIdle}
	}
}

// capTypeCodes maps the capacitance gauge device type register to a
// concrete model. Consulted only when the configured family is the
// generic placeholder.
var capTypeCodes = map[byte]Family{
	1: FamilyCDG025D,
	2: FamilyCDG045D,
	3: FamilyCDG100D,
	4: FamilyCDG160D,
	5: FamilyCDG200D,
}

// CapacitanceModelFor resolves a device type code reported by a
// capacitance gauge. ok is false for unknown codes.
func CapacitanceModelFor(code byte) (Family, bool) {
	f, ok := capTypeCodes[code]
	return f, ok
}
