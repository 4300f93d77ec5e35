// SPDX-License-Identifier: MIT

// Package transport drives one serial (or bridged) byte line for a single
// device: frame-level reads, RS485 half-duplex timing, the blocking
// send/receive cycle, and the cancellable continuous polling loop.
package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

// Line is the byte-level connection a Transport owns. Reads are expected
// to be bounded by the configured poll timeout and to return (0, nil)
// when no data arrived, which is how the frame readers detect an idle
// line.
type Line interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	// SetReadTimeout bounds how long a single Read may block.
	SetReadTimeout(d time.Duration) error
	// SetRTS drives the RTS handshake line (RS485 direction control).
	// No-op on lines without modem control.
	SetRTS(level bool) error
	// Drain blocks until buffered output has left the host.
	Drain() error
	// SetBaud switches the line speed, used by baud discovery. No-op on
	// lines without a baud rate.
	SetBaud(baud int) error
}

// serialLine adapts a go.bug.st serial port to the Line interface.
type serialLine struct {
	port     serial.Port
	settings gauges.SerialSettings
}

// OpenSerialLine opens a serial port with the family-declared framing
// parameters.
func OpenSerialLine(portName string, settings gauges.SerialSettings) (Line, error) {
	mode := &serial.Mode{
		BaudRate: settings.BaudRate,
		DataBits: settings.DataBits,
		Parity:   serialParity(settings.Parity),
		StopBits: serialStopBits(settings.StopBits),
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &serialLine{port: port, settings: settings}, nil
}

func serialParity(p gauges.Parity) serial.Parity {
	switch p {
	case gauges.ParityEven:
		return serial.EvenParity
	case gauges.ParityOdd:
		return serial.OddParity
	default:
		return serial.NoParity
	}
}

func serialStopBits(s gauges.StopBits) serial.StopBits {
	if s == gauges.StopBitsTwo {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

func (s *serialLine) Read(p []byte) (int, error)  { return s.port.Read(p) }
func (s *serialLine) Write(p []byte) (int, error) { return s.port.Write(p) }
func (s *serialLine) Close() error                { return s.port.Close() }

func (s *serialLine) SetReadTimeout(d time.Duration) error {
	return s.port.SetReadTimeout(d)
}

func (s *serialLine) SetRTS(level bool) error { return s.port.SetRTS(level) }
func (s *serialLine) Drain() error            { return s.port.Drain() }

func (s *serialLine) SetBaud(baud int) error {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: s.settings.DataBits,
		Parity:   serialParity(s.settings.Parity),
		StopBits: serialStopBits(s.settings.StopBits),
	}
	return s.port.SetMode(mode)
}

// wsLine adapts a serial-over-WebSocket bridge to the Line interface.
// The bridge forwards raw bytes as binary messages, so RTS control and
// baud selection stay on the far side and are no-ops here.
type wsLine struct {
	conn        *websocket.Conn
	buf         []byte
	bufOffset   int
	readTimeout time.Duration
	closed      bool
}

// OpenWebSocketLine connects to a serial bridge over WebSocket. The
// header may carry authentication; insecureTLS skips certificate
// verification for wss:// endpoints.
func OpenWebSocketLine(url string, header http.Header, insecureTLS bool) (Line, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	if insecureTLS {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	conn, resp, err := dialer.Dial(url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket connection failed: %w", err)
	}
	return &wsLine{conn: conn, readTimeout: 50 * time.Millisecond}, nil
}

func (w *wsLine) Read(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("websocket connection closed")
	}

	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	if err := w.conn.SetReadDeadline(time.Now().Add(w.readTimeout)); err != nil {
		return 0, err
	}
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			// A deadline expiry mimics a quiet serial line.
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return 0, nil
			}
			w.closed = true
			return 0, err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *wsLine) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsLine) Close() error { return w.conn.Close() }

func (w *wsLine) SetReadTimeout(d time.Duration) error {
	w.readTimeout = d
	return nil
}

func (w *wsLine) SetRTS(level bool) error { return nil }
func (w *wsLine) Drain() error            { return nil }
func (w *wsLine) SetBaud(baud int) error  { return nil }
