// SPDX-License-Identifier: MIT

// Package gauges implements the wire protocols spoken by the supported
// vacuum gauge and turbo pump controller families.
//
// Four protocol shapes are covered: the CRC16-framed binary protocol shared
// by seven transmitter models, the 5-byte/9-byte capacitance gauge frames,
// the MKS-style ASCII mnemonic protocol, and the fixed-width ASCII telegram
// protocol of the turbo pump controller. The package provides command
// catalogs, frame encoding/decoding, checksum routines, the parameter value
// codecs, and the free-text command encoder used for manual diagnostics.
package gauges

// CRC-16-CCITT configuration (binary transmitter family)
const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// Binary protocol framing
const (
	binaryCmdRead  = 0x01
	binaryCmdWrite = 0x03
	binaryHeader   = 9 // addr, device id, ack, length, cmd, pid hi, pid lo, 2 reserved
)

// Capacitance gauge framing
const (
	capCmdSync  = 0x03
	capRespSync = 0x07
	capCmdLen   = 5
	capRespLen  = 9
)

// Capacitance gauge service codes
const (
	capServiceRead    = 0x00
	capServiceWrite   = 0x10
	capServiceSpecial = 0x40
)

// Capacitance gauge status byte layout
const (
	capStatusHeating  = 0x80
	capStatusTempOK   = 0x40
	capStatusEmission = 0x20
	capStatusUnitMask = 0x30
)

// ASCII mnemonic protocol framing
const (
	mnemonicPrefix     = '@'
	mnemonicTerminator = '\\'
	mnemonicQuery      = '?'
	mnemonicSet        = '!'
	// Point-to-point RS232 links use the fixed address 254.
	mnemonicDefaultAddress = 254
)

// Turbo telegram actions
const (
	turboActionRead  = 0
	turboActionWrite = 10
	turboDataWidth   = 6
	turboMinResponse = 10
)

// Turbo controller in-band error markers
const (
	turboErrNoDef = "NO_DEF"
	turboErrRange = "_RANGE"
	turboErrLogic = "_LOGIC"
)

// CommandKind distinguishes query and set commands.
type CommandKind int

// Command kinds
const (
	CommandQuery CommandKind = iota
	CommandSet
)

func (k CommandKind) String() string {
	if k == CommandSet {
		return "set"
	}
	return "query"
}

// Protocol identifies the wire protocol shape a device family speaks.
type Protocol int

// Protocol shapes
const (
	ProtocolBinary      Protocol = iota // CRC16-framed binary transmitters
	ProtocolCapacitance                 // 5-byte command / 9-byte response
	ProtocolMnemonic                    // @addr CMD ?|! value \
	ProtocolTurbo                       // fixed-width ASCII telegrams
)

func (p Protocol) String() string {
	switch p {
	case ProtocolBinary:
		return "binary"
	case ProtocolCapacitance:
		return "capacitance"
	case ProtocolMnemonic:
		return "mnemonic"
	case ProtocolTurbo:
		return "turbo"
	default:
		return "unknown"
	}
}
