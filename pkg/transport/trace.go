// SPDX-License-Identifier: MIT

package transport

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Trace directions
const (
	TraceTX = "tx"
	TraceRX = "rx"
)

// TraceEntry is one raw exchange captured on the wire.
type TraceEntry struct {
	Time time.Time `cbor:"time"`
	// Dir is TraceTX for host-to-device, TraceRX for device-to-host.
	Dir  string `cbor:"dir"`
	Data []byte `cbor:"data"`
}

// TraceRecorder captures every frame a transport writes or reads, for
// offline protocol analysis. Safe for concurrent use.
type TraceRecorder struct {
	mu      sync.Mutex
	entries []TraceEntry
}

// NewTraceRecorder returns an empty recorder.
func NewTraceRecorder() *TraceRecorder {
	return &TraceRecorder{}
}

// Record appends one exchange. The data slice is copied.
func (t *TraceRecorder) Record(dir string, data []byte) {
	entry := TraceEntry{
		Time: time.Now(),
		Dir:  dir,
		Data: append([]byte(nil), data...),
	}
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()
}

// Len returns the number of captured exchanges.
func (t *TraceRecorder) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Save writes the capture as a stream of CBOR-encoded entries.
func (t *TraceRecorder) Save(w io.Writer) error {
	t.mu.Lock()
	entries := append([]TraceEntry(nil), t.entries...)
	t.mu.Unlock()

	enc := cbor.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// LoadTrace reads back a capture written by Save.
func LoadTrace(r io.Reader) ([]TraceEntry, error) {
	var entries []TraceEntry
	dec := cbor.NewDecoder(r)
	for {
		var e TraceEntry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return entries, err
		}
		entries = append(entries, e)
	}
}
