// SPDX-License-Identifier: MIT

package gauges

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmer-level failures. Protocol and I/O failures
// are reported as DeviceResponse values instead (see Decode methods).
var (
	// ErrUnknownCommand means the command name is not in the family catalog.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnsupportedParamType means a parameter codec was asked to handle a
	// type it does not implement.
	ErrUnsupportedParamType = errors.New("unsupported parameter type")
	// ErrEncode means a parameter value could not be encoded for the wire.
	ErrEncode = errors.New("encode error")
	// ErrConversion means manual command input could not be converted to bytes.
	ErrConversion = errors.New("conversion error")
)

// CommandDefinition describes one catalog entry: the wire identifier of a
// device parameter, its access rights and value type. Definitions are
// immutable; one catalog is built per device family and shared read-only.
type CommandDefinition struct {
	// PID is the numeric wire identifier (binary and turbo families).
	// For the capacitance family it packs service<<8 | address byte.
	PID int
	// Mnemonic is the ASCII wire identifier (mnemonic family).
	Mnemonic    string
	Name        string
	Description string
	Readable    bool
	Writable    bool
	// Continuous marks the value that the polling loop reads repeatedly.
	Continuous bool
	Type       ParamType
	// Width is the byte count for ParamAsciiFixedWidth values.
	Width    int
	Min, Max float64
	HasRange bool
	Unit     string
}

// WireID returns the identifier as written on the wire, for display.
func (d CommandDefinition) WireID() string {
	if d.Mnemonic != "" {
		return d.Mnemonic
	}
	return fmt.Sprintf("%d", d.PID)
}

// Access returns a short read/write capability string.
func (d CommandDefinition) Access() string {
	switch {
	case d.Readable && d.Writable:
		return "rw"
	case d.Writable:
		return "w"
	default:
		return "r"
	}
}

// DeviceCommand is a single request against a device: a catalog command
// name, whether it queries or sets, and the set value (key "value").
// Commands are built fresh per call and consumed once by a codec.
type DeviceCommand struct {
	Name       string
	Kind       CommandKind
	Parameters map[string]string
}

// Query builds a read command for the named catalog entry.
func Query(name string) DeviceCommand {
	return DeviceCommand{Name: name, Kind: CommandQuery}
}

// Set builds a write command carrying the given value.
func Set(name, value string) DeviceCommand {
	return DeviceCommand{
		Name:       name,
		Kind:       CommandSet,
		Parameters: map[string]string{"value": value},
	}
}

// Value returns the set value, or "" for queries.
func (c DeviceCommand) Value() string {
	return c.Parameters["value"]
}

// DeviceResponse is the sole output type callers observe. Failures of any
// kind (timeout, framing, checksum, device NAK) are carried here rather
// than raised, so a polling loop survives a single bad read.
type DeviceResponse struct {
	Raw       []byte
	Formatted string
	// Values holds the comma-separated parts of multi-value payloads.
	Values  []string
	Success bool
	Err     string
}

// OK builds a successful response.
func OK(raw []byte, formatted string) DeviceResponse {
	return DeviceResponse{Raw: raw, Formatted: formatted, Success: true}
}

// Fail builds a failed response with a specific, actionable message.
func Fail(raw []byte, format string, args ...interface{}) DeviceResponse {
	return DeviceResponse{Raw: raw, Err: fmt.Sprintf(format, args...)}
}

func (r DeviceResponse) String() string {
	if !r.Success {
		return "error: " + r.Err
	}
	return r.Formatted
}

// ResponseHint couples a transmitted command to its response for wire
// formats that do not echo a parameter identifier. Encode returns it and
// Decode takes it explicitly, so no state is shared between the two.
type ResponseHint struct {
	Command string
	Def     *CommandDefinition
}
