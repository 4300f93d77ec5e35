// SPDX-License-Identifier: MIT

package gauges

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParamType enumerates the device parameter value encodings.
type ParamType int

// Parameter value types
const (
	ParamBool ParamType = iota
	ParamUInt8
	ParamUInt16
	ParamUInt32
	ParamFloat32
	// ParamFixedPointEn20 is a signed 32-bit integer whose real value is
	// raw / 2^20. Used for linear pressure and temperature readings.
	ParamFixedPointEn20
	// ParamLogFixedPointEn26 is a signed 32-bit integer whose real value is
	// 10^(raw / 2^26). Used for wide-dynamic-range pressure readings.
	ParamLogFixedPointEn26
	// ParamAsciiFixedWidth is a fixed-width ASCII text field.
	ParamAsciiFixedWidth
	// ParamAsciiFloat is a free-form decimal number transmitted as ASCII
	// text, as the mnemonic transmitters send their readings.
	ParamAsciiFloat
)

func (t ParamType) String() string {
	switch t {
	case ParamBool:
		return "bool"
	case ParamUInt8:
		return "uint8"
	case ParamUInt16:
		return "uint16"
	case ParamUInt32:
		return "uint32"
	case ParamFloat32:
		return "float32"
	case ParamFixedPointEn20:
		return "fixed.20"
	case ParamLogFixedPointEn26:
		return "logfixed.26"
	case ParamAsciiFixedWidth:
		return "ascii"
	case ParamAsciiFloat:
		return "float"
	default:
		return "unknown"
	}
}

const (
	fixedEn20Scale = 1 << 20
	logEn26Scale   = 1 << 26
)

// EncodeFixedEn20 converts a real value to its raw en-20 representation.
func EncodeFixedEn20(v float64) (int32, error) {
	raw := math.Round(v * fixedEn20Scale)
	if raw > math.MaxInt32 || raw < math.MinInt32 {
		return 0, fmt.Errorf("%w: value %g out of en-20 range", ErrEncode, v)
	}
	return int32(raw), nil
}

// DecodeFixedEn20 converts a raw en-20 value back to a real value.
func DecodeFixedEn20(raw int32) float64 {
	return float64(raw) / fixedEn20Scale
}

// EncodeLogEn26 converts a positive real value to its raw logarithmic
// en-26 representation. Non-positive values have no logarithm and fail.
func EncodeLogEn26(v float64) (int32, error) {
	if v <= 0 {
		return 0, fmt.Errorf("%w: logarithmic value must be positive, got %g", ErrEncode, v)
	}
	raw := math.Round(math.Log10(v) * logEn26Scale)
	if raw > math.MaxInt32 || raw < math.MinInt32 {
		return 0, fmt.Errorf("%w: value %g out of logarithmic range", ErrEncode, v)
	}
	return int32(raw), nil
}

// DecodeLogEn26 converts a raw logarithmic en-26 value back to a real
// value. The exponent is bounded by the int32 raw range (|exp| <= 32), so
// the result always fits a float64.
func DecodeLogEn26(raw int32) float64 {
	exp := float64(raw) / logEn26Scale
	// Clamp pathological exponents rather than producing Inf.
	if exp > 300 {
		exp = 300
	} else if exp < -300 {
		exp = -300
	}
	return math.Pow(10, exp)
}

// EncodeParam converts a textual parameter value into its wire bytes.
// width is only consulted for ParamAsciiFixedWidth. Round-trips through
// DecodeParam are exact at integer resolution; Float32 and the fixed-point
// types are bounded by their own precision (2^-20, or 1e-6 relative for
// the logarithmic encoding).
func EncodeParam(t ParamType, width int, value string) ([]byte, error) {
	switch t {
	case ParamBool:
		on, err := parseBool(value)
		if err != nil {
			return nil, err
		}
		if on {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case ParamUInt8, ParamUInt16, ParamUInt32:
		bits := 8 << uint(t-ParamUInt8)
		n, err := strconv.ParseUint(strings.TrimSpace(value), 10, bits)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a %d-bit unsigned integer", ErrEncode, value, bits)
		}
		buf := make([]byte, bits/8)
		switch t {
		case ParamUInt8:
			buf[0] = uint8(n)
		case ParamUInt16:
			binary.BigEndian.PutUint16(buf, uint16(n))
		default:
			binary.BigEndian.PutUint32(buf, uint32(n))
		}
		return buf, nil

	case ParamFloat32:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a float", ErrEncode, value)
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, math.Float32bits(float32(f)))
		return buf, nil

	case ParamFixedPointEn20:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrEncode, value)
		}
		raw, err := EncodeFixedEn20(f)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(raw))
		return buf, nil

	case ParamLogFixedPointEn26:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrEncode, value)
		}
		raw, err := EncodeLogEn26(f)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(raw))
		return buf, nil

	case ParamAsciiFixedWidth:
		if width <= 0 {
			width = len(value)
		}
		if len(value) > width {
			return nil, fmt.Errorf("%w: text %q exceeds field width %d", ErrEncode, value, width)
		}
		buf := make([]byte, width)
		for i := range buf {
			buf[i] = ' '
		}
		copy(buf, value)
		return buf, nil

	case ParamAsciiFloat:
		v := strings.TrimSpace(value)
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrEncode, value)
		}
		return []byte(v), nil

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedParamType, t)
	}
}

// DecodeParam converts wire bytes back into a textual parameter value.
// It is the numeric inverse of EncodeParam.
func DecodeParam(t ParamType, width int, data []byte) (string, error) {
	switch t {
	case ParamBool:
		if len(data) < 1 {
			return "", fmt.Errorf("%w: empty boolean payload", ErrEncode)
		}
		if data[0] != 0 {
			return "on", nil
		}
		return "off", nil

	case ParamUInt8:
		if len(data) < 1 {
			return "", fmt.Errorf("%w: short uint8 payload", ErrEncode)
		}
		return strconv.FormatUint(uint64(data[0]), 10), nil

	case ParamUInt16:
		if len(data) < 2 {
			return "", fmt.Errorf("%w: short uint16 payload", ErrEncode)
		}
		return strconv.FormatUint(uint64(binary.BigEndian.Uint16(data)), 10), nil

	case ParamUInt32:
		if len(data) < 4 {
			return "", fmt.Errorf("%w: short uint32 payload", ErrEncode)
		}
		return strconv.FormatUint(uint64(binary.BigEndian.Uint32(data)), 10), nil

	case ParamFloat32:
		if len(data) < 4 {
			return "", fmt.Errorf("%w: short float payload", ErrEncode)
		}
		f := math.Float32frombits(binary.BigEndian.Uint32(data))
		return strconv.FormatFloat(float64(f), 'g', -1, 32), nil

	case ParamFixedPointEn20:
		if len(data) < 4 {
			return "", fmt.Errorf("%w: short fixed-point payload", ErrEncode)
		}
		v := DecodeFixedEn20(int32(binary.BigEndian.Uint32(data)))
		return strconv.FormatFloat(v, 'g', -1, 64), nil

	case ParamLogFixedPointEn26:
		if len(data) < 4 {
			return "", fmt.Errorf("%w: short fixed-point payload", ErrEncode)
		}
		v := DecodeLogEn26(int32(binary.BigEndian.Uint32(data)))
		return strconv.FormatFloat(v, 'e', 6, 64), nil

	case ParamAsciiFixedWidth:
		return strings.TrimRight(string(data), " \x00"), nil

	case ParamAsciiFloat:
		v := strings.TrimSpace(string(data))
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "", fmt.Errorf("%w: %q is not a number", ErrEncode, v)
		}
		return v, nil

	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedParamType, t)
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "on", "true", "yes":
		return true, nil
	case "0", "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrEncode, s)
}
