// SPDX-License-Identifier: MIT

package gauges

import "sort"

// Catalog maps command names to their definitions for one device family.
// Catalogs are built once at package init, never mutated, and may be
// shared by any number of transports for the same family.
type Catalog map[string]CommandDefinition

// Lookup returns the definition for a command name.
func (c Catalog) Lookup(name string) (CommandDefinition, bool) {
	def, ok := c[name]
	return def, ok
}

// Names returns the command names in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ContinuousCommand returns the catalog's designated continuous-read
// command, used by the polling loop.
func (c Catalog) ContinuousCommand() (DeviceCommand, bool) {
	for _, name := range c.Names() {
		if def := c[name]; def.Continuous && def.Readable {
			return Query(name), true
		}
	}
	return DeviceCommand{}, false
}

// CatalogFor returns the immutable command catalog for a family.
func CatalogFor(f Family) Catalog {
	switch f.Protocol() {
	case ProtocolCapacitance:
		return capacitanceCatalog
	case ProtocolMnemonic:
		return mnemonicCatalog
	case ProtocolTurbo:
		return turboCatalog
	default:
		return binaryCatalogFor(f)
	}
}

// Binary transmitter parameter ids shared by all seven models.
const (
	pidProductName     = 207
	pidSoftwareVersion = 208
	pidSerialNumber    = 218
	pidPressure        = 221
	pidTemperature     = 222
	pidErrorStatus     = 224
	pidDegas           = 230
	pidPressureUnit    = 232
)

// binaryCatalogFor builds the catalog for one binary transmitter model.
// The table is shared except for the pressure encoding, which depends on
// the sensor technology.
func binaryCatalogFor(f Family) Catalog {
	return Catalog{
		"pressure": {
			PID: pidPressure, Name: "pressure",
			Description: "combined pressure reading",
			Readable:    true, Continuous: true,
			Type: f.PressureType(), Unit: "mbar",
		},
		"temperature": {
			PID: pidTemperature, Name: "temperature",
			Description: "sensor electronics temperature",
			Readable:    true,
			Type:        ParamFloat32, Unit: "degC",
		},
		"product_name": {
			PID: pidProductName, Name: "product_name",
			Description: "device product designation",
			Readable:    true,
			Type:        ParamAsciiFixedWidth, Width: 16,
		},
		"software_version": {
			PID: pidSoftwareVersion, Name: "software_version",
			Description: "firmware version string",
			Readable:    true,
			Type:        ParamAsciiFixedWidth, Width: 8,
		},
		"serial_number": {
			PID: pidSerialNumber, Name: "serial_number",
			Description: "device serial number",
			Readable:    true,
			Type:        ParamAsciiFixedWidth, Width: 16,
		},
		"error_status": {
			PID: pidErrorStatus, Name: "error_status",
			Description: "device error bitfield",
			Readable:    true,
			Type:        ParamUInt16,
		},
		"degas": {
			PID: pidDegas, Name: "degas",
			Description: "degas on/off",
			Readable:    true, Writable: true,
			Type: ParamBool,
		},
		"pressure_unit": {
			PID: pidPressureUnit, Name: "pressure_unit",
			Description: "display pressure unit (0=mbar 1=Torr 2=Pa)",
			Readable:    true, Writable: true,
			Type: ParamUInt8, Min: 0, Max: 2, HasRange: true,
		},
	}
}

// Capacitance gauge register addresses. The PID packs service<<8 | address.
const (
	capRegStatus     = capServiceRead<<8 | 0x00
	capRegUnit       = capServiceRead<<8 | 0x01
	capRegSWVersion  = capServiceRead<<8 | 0x10
	capRegDeviceType = capServiceRead<<8 | 0x38
	capRegZeroAdjust = capServiceSpecial<<8 | 0x00
	capRegSetUnit    = capServiceWrite<<8 | 0x01
)

var capacitanceCatalog = Catalog{
	"pressure": {
		PID: capRegStatus, Name: "pressure",
		Description: "diaphragm pressure reading (14-bit fixed point)",
		Readable:    true, Continuous: true,
		Type: ParamUInt16, Unit: "mbar",
	},
	"status": {
		PID: capRegStatus, Name: "status",
		Description: "heating / temperature-ok / emission status bits",
		Readable:    true,
		Type:        ParamUInt8,
	},
	"unit": {
		PID: capRegUnit, Name: "unit",
		Description: "pressure unit code (0=mbar 1=Torr 2=Pa)",
		Readable:    true,
		Type:        ParamUInt8, Min: 0, Max: 2, HasRange: true,
	},
	"set_unit": {
		PID: capRegSetUnit, Name: "set_unit",
		Description: "select pressure unit (0=mbar 1=Torr 2=Pa)",
		Writable:    true,
		Type:        ParamUInt8, Min: 0, Max: 2, HasRange: true,
	},
	"software_version": {
		PID: capRegSWVersion, Name: "software_version",
		Description: "firmware version",
		Readable:    true,
		Type:        ParamUInt8,
	},
	"device_type": {
		PID: capRegDeviceType, Name: "device_type",
		Description: "device type code, resolves the concrete CDG model",
		Readable:    true,
		Type:        ParamUInt8,
	},
	"zero_adjust": {
		PID: capRegZeroAdjust, Name: "zero_adjust",
		Description: "perform zero adjustment at current pressure",
		Writable:    true,
		Type:        ParamBool,
	},
}

var mnemonicCatalog = Catalog{
	"pressure": {
		Mnemonic: "PR3", Name: "pressure",
		Description: "combined pressure reading",
		Readable:    true, Continuous: true,
		Type: ParamAsciiFloat, Unit: "mbar",
	},
	"pirani_pressure": {
		Mnemonic: "PR1", Name: "pirani_pressure",
		Description: "Pirani sensor pressure",
		Readable:    true,
		Type:        ParamAsciiFloat, Unit: "mbar",
	},
	"piezo_pressure": {
		Mnemonic: "PR2", Name: "piezo_pressure",
		Description: "piezo sensor pressure",
		Readable:    true,
		Type:        ParamAsciiFloat, Unit: "mbar",
	},
	"temperature": {
		Mnemonic: "TEM", Name: "temperature",
		Description: "sensor temperature",
		Readable:    true,
		Type:        ParamAsciiFloat, Unit: "degC",
	},
	"unit": {
		Mnemonic: "U", Name: "unit",
		Description: "pressure unit (MBAR, TORR, PASCAL)",
		Readable:    true, Writable: true,
		Type: ParamAsciiFixedWidth,
	},
	"device_type": {
		Mnemonic: "DT", Name: "device_type",
		Description: "device type string",
		Readable:    true,
		Type:        ParamAsciiFixedWidth,
	},
	"software_version": {
		Mnemonic: "FV", Name: "software_version",
		Description: "firmware version",
		Readable:    true,
		Type:        ParamAsciiFixedWidth,
	},
	"serial_number": {
		Mnemonic: "SN", Name: "serial_number",
		Description: "device serial number",
		Readable:    true,
		Type:        ParamAsciiFixedWidth,
	},
	"address": {
		Mnemonic: "AD", Name: "address",
		Description: "RS485 device address",
		Readable:    true, Writable: true,
		Type: ParamUInt8, Min: 1, Max: 254, HasRange: true,
	},
	"baud": {
		Mnemonic: "BR", Name: "baud",
		Description: "serial baud rate",
		Readable:    true, Writable: true,
		Type: ParamUInt32,
	},
}

var turboCatalog = Catalog{
	"standby": {
		PID: 2, Name: "standby",
		Description: "standby rotation speed mode",
		Readable:    true, Writable: true,
		Type: ParamBool,
	},
	"motor_pump": {
		PID: 23, Name: "motor_pump",
		Description: "pump motor on/off",
		Readable:    true, Writable: true,
		Type: ParamBool,
	},
	"error_code": {
		PID: 303, Name: "error_code",
		Description: "current error code",
		Readable:    true,
		Type:        ParamAsciiFixedWidth, Width: 6,
	},
	"actual_speed": {
		PID: 309, Name: "actual_speed",
		Description: "actual rotation speed",
		Readable:    true, Continuous: true,
		Type: ParamUInt32, Unit: "Hz",
	},
	"drive_current": {
		PID: 310, Name: "drive_current",
		Description: "drive current",
		Readable:    true,
		Type:        ParamFloat32, Unit: "A",
	},
	"firmware_version": {
		PID: 312, Name: "firmware_version",
		Description: "controller firmware version",
		Readable:    true,
		Type:        ParamAsciiFixedWidth, Width: 6,
	},
	"drive_power": {
		PID: 316, Name: "drive_power",
		Description: "drive power consumption",
		Readable:    true,
		Type:        ParamUInt32, Unit: "W",
	},
	"motor_temperature": {
		PID: 346, Name: "motor_temperature",
		Description: "motor temperature",
		Readable:    true,
		Type:        ParamUInt32, Unit: "degC",
	},
	"set_speed": {
		PID: 708, Name: "set_speed",
		Description: "rotation speed setpoint in percent",
		Readable:    true, Writable: true,
		Type: ParamUInt32, Unit: "%", Min: 20, Max: 100, HasRange: true,
	},
}
