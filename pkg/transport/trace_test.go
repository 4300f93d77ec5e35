// SPDX-License-Identifier: MIT

package transport

import (
	"bytes"
	"testing"
	"time"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

func TestTraceRoundTrip(t *testing.T) {
	rec := NewTraceRecorder()
	rec.Record(TraceTX, []byte{0x03, 0x00, 0x10, 0x00, 0x10})
	rec.Record(TraceRX, []byte{0x07, 0x00, 0x80, 0x00, 0x40, 0x00, 0x00, 0x02, 0xC2})

	var buf bytes.Buffer
	if err := rec.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := LoadTrace(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Dir != TraceTX || entries[1].Dir != TraceRX {
		t.Errorf("directions lost: %q, %q", entries[0].Dir, entries[1].Dir)
	}
	if !bytes.Equal(entries[0].Data, []byte{0x03, 0x00, 0x10, 0x00, 0x10}) {
		t.Errorf("tx payload lost: % X", entries[0].Data)
	}
	if entries[0].Time.IsZero() {
		t.Error("timestamps should survive the round trip")
	}
}

func TestTraceCapturesTransportExchanges(t *testing.T) {
	rec := NewTraceRecorder()
	line := newReplyLine([]byte(`@254ACK1.0E-3\`))
	tr, err := New(line, Config{
		Family:      gauges.FamilyPPG550,
		ReadTimeout: 100 * time.Millisecond,
		Logger:      quietLogger(),
		Trace:       rec,
	})
	if err != nil {
		t.Fatal(err)
	}

	if resp := tr.Send(gauges.Query("pressure")); !resp.Success {
		t.Fatalf("send failed: %s", resp.Err)
	}
	if rec.Len() != 2 {
		t.Fatalf("one cycle should capture tx and rx, got %d entries", rec.Len())
	}
}
