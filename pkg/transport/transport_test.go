// SPDX-License-Identifier: MIT

package transport

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

// replyLine is an in-memory Line that answers every written frame with
// a canned response, optionally only at a specific baud rate.
type replyLine struct {
	mu       sync.Mutex
	reply    []byte
	pending  []byte
	writes   [][]byte
	events   []string
	baud     int
	mustBaud int // respond only at this rate when non-zero
	closed   bool
}

func newReplyLine(reply []byte) *replyLine {
	return &replyLine{reply: reply, baud: 9600}
}

func (l *replyLine) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		l.mu.Unlock()
		time.Sleep(time.Millisecond)
		l.mu.Lock()
		if len(l.pending) == 0 {
			return 0, nil
		}
	}
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

func (l *replyLine) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writes = append(l.writes, append([]byte(nil), p...))
	l.events = append(l.events, "write")
	if l.mustBaud == 0 || l.baud == l.mustBaud {
		l.pending = append(l.pending, l.reply...)
	}
	return len(p), nil
}

func (l *replyLine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *replyLine) SetReadTimeout(d time.Duration) error { return nil }

func (l *replyLine) SetRTS(level bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level {
		l.events = append(l.events, "rts-on")
	} else {
		l.events = append(l.events, "rts-off")
	}
	return nil
}

func (l *replyLine) Drain() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, "drain")
	return nil
}

func (l *replyLine) SetBaud(baud int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.baud = baud
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestTransportSend_QueryCycle(t *testing.T) {
	line := newReplyLine([]byte(`@254ACK1.234E-05\`))
	tr, err := New(line, Config{
		Family:      gauges.FamilyPPG550,
		ReadTimeout: 200 * time.Millisecond,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	resp := tr.Send(gauges.Query("pressure"))
	if !resp.Success {
		t.Fatalf("send failed: %s", resp.Err)
	}
	if !strings.Contains(resp.Formatted, "1.234E-05") {
		t.Errorf("formatted should carry the reading, got %q", resp.Formatted)
	}
	if len(line.writes) != 1 || string(line.writes[0]) != `@254PR3?\` {
		t.Errorf("unexpected frame on the wire: %q", line.writes)
	}
}

func TestTransportSend_Timeout(t *testing.T) {
	line := newReplyLine(nil) // never answers
	tr, err := New(line, Config{
		Family:      gauges.FamilyPPG550,
		ReadTimeout: 30 * time.Millisecond,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	resp := tr.Send(gauges.Query("pressure"))
	if resp.Success {
		t.Fatal("silent line should produce a failed response")
	}
	if !strings.Contains(resp.Err, "no response") {
		t.Errorf("timeout should be reported as such, got %q", resp.Err)
	}
}

func TestTransportSend_RS485Sequencing(t *testing.T) {
	line := newReplyLine([]byte(`@007ACK1.0E-3\`))
	tr, err := New(line, Config{
		Family:      gauges.FamilyPPG550,
		RS485:       DefaultRS485Config(7),
		ReadTimeout: 200 * time.Millisecond,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	resp := tr.Send(gauges.Query("pressure"))
	if !resp.Success {
		t.Fatalf("send failed: %s", resp.Err)
	}

	// Initial rts-off from setup, then the transmit dance.
	want := []string{"rts-off", "rts-on", "write", "drain", "rts-off"}
	if len(line.events) != len(want) {
		t.Fatalf("event sequence mismatch: %v", line.events)
	}
	for i, e := range want {
		if line.events[i] != e {
			t.Fatalf("event %d: got %q, want %q (full: %v)", i, line.events[i], e, line.events)
		}
	}
	if string(line.writes[0]) != `@007PR3?\` {
		t.Errorf("RS485 frame should carry the drop address, got %q", line.writes[0])
	}
}

func TestTransportRS485_AddressValidation(t *testing.T) {
	_, err := New(newReplyLine(nil), Config{
		Family: gauges.FamilyPPG550,
		RS485:  &RS485Config{Address: 300},
		Logger: quietLogger(),
	})
	if err == nil {
		t.Fatal("address 300 should be rejected")
	}
}

func TestTransportContinuous_DeliversAndStops(t *testing.T) {
	line := newReplyLine([]byte(`@254ACK9.87E-4\`))
	tr, err := New(line, Config{
		Family:      gauges.FamilyPPG550,
		ReadTimeout: 100 * time.Millisecond,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var got []gauges.DeviceResponse
	sink := func(r gauges.DeviceResponse) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
	}

	if err := tr.StartContinuous(10*time.Millisecond, sink); err != nil {
		t.Fatal(err)
	}

	// A second start and a manual send must both be refused.
	if err := tr.StartContinuous(10*time.Millisecond, sink); err == nil {
		t.Error("second StartContinuous should fail")
	}
	if resp := tr.Send(gauges.Query("pressure")); resp.Success || !strings.Contains(resp.Err, "polling") {
		t.Errorf("send during polling should fail with a polling message, got %+v", resp)
	}

	time.Sleep(60 * time.Millisecond)
	start := time.Now()
	tr.StopContinuous()
	if elapsed := time.Since(start); elapsed > tr.read+200*time.Millisecond {
		t.Errorf("stop should return within one cycle, took %s", elapsed)
	}

	mu.Lock()
	count := len(got)
	mu.Unlock()
	if count < 2 {
		t.Fatalf("expected at least 2 deliveries in 60ms at 10ms interval, got %d", count)
	}
	for _, r := range got {
		if !r.Success {
			t.Errorf("scripted responses should all decode: %s", r.Err)
		}
	}

	// Nothing may arrive after StopContinuous returns.
	time.Sleep(40 * time.Millisecond)
	mu.Lock()
	after := len(got)
	mu.Unlock()
	if after != count {
		t.Errorf("%d responses delivered after stop", after-count)
	}

	// The line is usable again.
	if resp := tr.Send(gauges.Query("pressure")); !resp.Success {
		t.Errorf("send after stop should work, got: %s", resp.Err)
	}
}

func TestTransportContinuous_StopIdempotent(t *testing.T) {
	line := newReplyLine([]byte(`@254ACK1.0E-3\`))
	tr, err := New(line, Config{Family: gauges.FamilyPPG550, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	tr.StopContinuous() // never started
	if err := tr.StartContinuous(10*time.Millisecond, func(gauges.DeviceResponse) {}); err != nil {
		t.Fatal(err)
	}
	tr.StopContinuous()
	tr.StopContinuous()
}

func TestTransportProbe(t *testing.T) {
	line := newReplyLine([]byte(`@254ACKPPG550\`))
	tr, err := New(line, Config{
		Family:      gauges.FamilyPPG550,
		ReadTimeout: 100 * time.Millisecond,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, alive := tr.Probe()
	if !alive {
		t.Fatalf("probe should succeed against a responsive line: %s", resp.Err)
	}

	line.mu.Lock()
	line.reply = nil
	line.mu.Unlock()
	tr.read = 20 * time.Millisecond
	if _, alive := tr.Probe(); alive {
		t.Error("probe should fail once the line goes silent")
	}
}

func TestTransportDiscoverBaud(t *testing.T) {
	line := newReplyLine([]byte(`@254ACKPPG550\`))
	line.mustBaud = 19200
	tr, err := New(line, Config{
		Family:      gauges.FamilyPPG550,
		ReadTimeout: 20 * time.Millisecond,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	baud, err := tr.DiscoverBaud()
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if baud != 19200 {
		t.Errorf("discovered %d, want 19200", baud)
	}
	if line.baud != 19200 {
		t.Errorf("line should stay at the discovered rate, is at %d", line.baud)
	}
}

func TestTransportDiscoverBaud_NothingAnswers(t *testing.T) {
	line := newReplyLine(nil)
	tr, err := New(line, Config{
		Family:      gauges.FamilyPPG550,
		ReadTimeout: 10 * time.Millisecond,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tr.DiscoverBaud(); err == nil {
		t.Fatal("discovery on a dead line should fail")
	}
	if line.baud != 9600 {
		t.Errorf("line should be restored to the family default, is at %d", line.baud)
	}
}

func TestTransportDisconnect(t *testing.T) {
	line := newReplyLine([]byte(`@254ACK1.0E-3\`))
	tr, err := New(line, Config{Family: gauges.FamilyPPG550, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}

	if err := tr.Disconnect(); err != nil {
		t.Fatal(err)
	}
	if !line.closed {
		t.Error("disconnect should close the line")
	}
	if tr.Connected() {
		t.Error("transport should report disconnected")
	}
	if resp := tr.Send(gauges.Query("pressure")); resp.Success || !strings.Contains(resp.Err, "not connected") {
		t.Errorf("send after disconnect should fail, got %+v", resp)
	}
}
