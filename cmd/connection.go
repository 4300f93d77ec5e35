// SPDX-License-Identifier: MIT

package cmd

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/transport"
)

// traceRec captures wire traffic when --trace is set. Flushed by
// closeDevice.
var traceRec *transport.TraceRecorder

// requireFamily resolves the --family flag, which every device-facing
// command needs.
func requireFamily() (gauges.Family, error) {
	if familyName == "" {
		return 0, fmt.Errorf("--family is required (see 'gaugectl families')")
	}
	return gauges.ParseFamily(familyName)
}

// openDevice opens the device selected by the connection flags: a
// simulator, a WebSocket bridge, or a serial port.
func openDevice() (transport.Device, string, error) {
	family, err := requireFamily()
	if err != nil {
		return nil, "", err
	}

	if simulate {
		sim := transport.NewSimulator(family, transport.SimConfig{
			Noise: 0.005,
			Delay: 5 * time.Millisecond,
		})
		return sim, fmt.Sprintf("Simulated %s", family), nil
	}

	var line transport.Line
	var info string

	switch {
	case wsURL != "":
		u, err := url.Parse(wsURL)
		if err != nil {
			return nil, "", fmt.Errorf("invalid URL: %v", err)
		}
		switch u.Scheme {
		case "ws", "wss":
			// OK
		default:
			return nil, "", fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
		}

		headers := http.Header{}
		if wsUsername != "" {
			password, err := getPassword()
			if err != nil {
				return nil, "", err
			}
			credentials := base64.StdEncoding.EncodeToString([]byte(wsUsername + ":" + password))
			headers.Set("Authorization", "Basic "+credentials)
		}

		line, err = transport.OpenWebSocketLine(wsURL, headers, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		info = fmt.Sprintf("Bridge: %s (%s)", wsURL, family)

	case portName != "":
		settings := family.Serial()
		if baudRate > 0 {
			settings.BaudRate = baudRate
		}
		line, err = transport.OpenSerialLine(portName, settings)
		if err != nil {
			return nil, "", err
		}
		info = fmt.Sprintf("Serial: %s @ %d baud (%s)", portName, settings.BaudRate, family)

	default:
		return nil, "", fmt.Errorf("either --port, --url or --simulate must be specified")
	}

	cfg := transport.Config{
		Family:      family,
		ReadTimeout: readTimeout,
	}
	if rs485 {
		cfg.RS485 = transport.DefaultRS485Config(rs485Address)
	}
	if traceFile != "" {
		traceRec = transport.NewTraceRecorder()
		cfg.Trace = traceRec
	}

	dev, err := transport.New(line, cfg)
	if err != nil {
		line.Close()
		return nil, "", err
	}
	return dev, info, nil
}

// closeDevice disconnects and writes the trace capture if one was
// requested.
func closeDevice(dev transport.Device) {
	dev.Disconnect()

	if traceRec == nil || traceFile == "" {
		return
	}
	f, err := os.Create(traceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write trace: %v\n", err)
		return
	}
	defer f.Close()
	if err := traceRec.Save(f); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write trace: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Trace: %d exchanges written to %s\n", traceRec.Len(), traceFile)
}

// getPassword retrieves the bridge password from the environment or
// prompts for it without echo.
func getPassword() (string, error) {
	if pw := os.Getenv("GAUGECTL_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// renderRaw formats response bytes per the --format flag.
func renderRaw(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	format := gauges.SuggestDisplayFormat(data)
	switch strings.ToLower(displayFmt) {
	case "hex":
		format = gauges.FormatHex
	case "decimal":
		format = gauges.FormatDecimal
	case "binary":
		format = gauges.FormatBinary
	case "ascii":
		format = gauges.FormatAscii
	}
	return gauges.RenderBytes(format, data)
}
