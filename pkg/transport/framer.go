// SPDX-License-Identifier: MIT

package transport

import (
	"bytes"
	"io"
	"time"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

// idlePolls is how many consecutive empty reads count as a quiet line
// once data has started arriving. At 9600 baud a byte takes about a
// millisecond, so with a 50ms poll timeout a single empty poll already
// means the device stopped talking; two guard against scheduler jitter.
const idlePolls = 2

// ReadFrame assembles one response frame from r according to the
// family's framing spec. It never blocks materially past the deadline
// and returns either the frame bytes or nil when nothing was received.
//
// The reader relies on the poll-read contract of Line: a Read that
// finds no data returns (0, nil) after the configured read timeout.
func ReadFrame(r io.Reader, spec gauges.FrameSpec, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	switch spec.Kind {
	case gauges.FrameFixed:
		return readFixedFrame(r, spec, deadline)
	case gauges.FrameTerminator:
		return readTerminatedFrame(r, spec, deadline)
	default:
		return readUntilIdle(r, deadline)
	}
}

// readFixedFrame scans for the sync byte, discarding leading garbage,
// then collects exactly spec.Length bytes. An incomplete frame at the
// deadline counts as nothing received.
func readFixedFrame(r io.Reader, spec gauges.FrameSpec, deadline time.Time) ([]byte, error) {
	var frame []byte
	buf := make([]byte, 64)
	synced := false

	for time.Now().Before(deadline) {
		n, err := r.Read(buf)
		if err != nil {
			return nil, err
		}
		for _, b := range buf[:n] {
			if !synced {
				if b != spec.Sync {
					continue
				}
				synced = true
			}
			frame = append(frame, b)
			if len(frame) == spec.Length {
				return frame, nil
			}
		}
	}
	return nil, nil
}

// readTerminatedFrame accumulates bytes until the terminator sequence
// arrives. A response starting with the NAK prefix never carries a
// terminator, so once the prefix is seen the reader just drains until
// the line goes quiet. The same quiet-line rule yields a best-effort
// partial frame when a device answers without ever terminating.
func readTerminatedFrame(r io.Reader, spec gauges.FrameSpec, deadline time.Time) ([]byte, error) {
	var acc []byte
	buf := make([]byte, 256)
	quiet := 0

	for time.Now().Before(deadline) {
		n, err := r.Read(buf)
		if err != nil {
			if len(acc) > 0 {
				return acc, nil
			}
			return nil, err
		}
		if n == 0 {
			if len(acc) > 0 {
				quiet++
				if quiet >= idlePolls {
					return acc, nil
				}
			}
			continue
		}
		quiet = 0
		acc = append(acc, buf[:n]...)

		nak := len(spec.NAKPrefix) > 0 && bytes.HasPrefix(acc, spec.NAKPrefix)
		if !nak && bytes.HasSuffix(acc, spec.Terminator) {
			return acc, nil
		}
	}
	if len(acc) > 0 {
		return acc, nil
	}
	return nil, nil
}

// readUntilIdle returns everything received up to the first quiet poll
// after at least one byte arrived. Used for the binary protocol, whose
// frames carry their own length field.
func readUntilIdle(r io.Reader, deadline time.Time) ([]byte, error) {
	var acc []byte
	buf := make([]byte, 256)

	for time.Now().Before(deadline) {
		n, err := r.Read(buf)
		if err != nil {
			if len(acc) > 0 {
				return acc, nil
			}
			return nil, err
		}
		if n == 0 {
			if len(acc) > 0 {
				return acc, nil
			}
			continue
		}
		acc = append(acc, buf[:n]...)
	}
	if len(acc) > 0 {
		return acc, nil
	}
	return nil, nil
}
