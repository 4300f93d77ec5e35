// SPDX-License-Identifier: MIT

package transport

import (
	"bytes"
	"testing"
	"time"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

// chunkReader replays scripted read chunks; a nil chunk is an idle poll.
// Once the script runs out the line stays idle. Idle polls sleep briefly
// like a real poll-timeout read would.
type chunkReader struct {
	chunks [][]byte
	idx    int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if c.idx >= len(c.chunks) {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	chunk := c.chunks[c.idx]
	c.idx++
	if chunk == nil {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	return copy(p, chunk), nil
}

func TestReadFrame_FixedDiscardsLeadingGarbage(t *testing.T) {
	frame := []byte{0x07, 0x00, 0x80, 0x00, 0x40, 0x00, 0x00, 0x02, 0xC2}
	r := &chunkReader{chunks: [][]byte{
		{0xFF, 0x13}, // line noise before the sync byte
		frame[:4],
		frame[4:],
	}}

	got, err := ReadFrame(r, gauges.FamilyCDG045D.Framing(), 200*time.Millisecond)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Errorf("frame mismatch: got % X, want % X", got, frame)
	}
}

func TestReadFrame_FixedIncompleteIsNothing(t *testing.T) {
	r := &chunkReader{chunks: [][]byte{{0x07, 0x00, 0x80}}}

	got, err := ReadFrame(r, gauges.FamilyCDG045D.Framing(), 30*time.Millisecond)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != nil {
		t.Errorf("partial fixed frame should count as nothing received, got % X", got)
	}
}

func TestReadFrame_TerminatorAcrossChunks(t *testing.T) {
	r := &chunkReader{chunks: [][]byte{
		[]byte("@254ACK1.2"),
		[]byte(`34E-05\`),
	}}

	got, err := ReadFrame(r, gauges.FamilyPPG550.Framing(), 200*time.Millisecond)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `@254ACK1.234E-05\` {
		t.Errorf("terminated frame mismatch: got %q", got)
	}
}

func TestReadFrame_TerminatorNAKDrainsUntilQuiet(t *testing.T) {
	// NAK responses never carry the terminator; the reader must return
	// them once the line goes quiet.
	r := &chunkReader{chunks: [][]byte{
		[]byte("@NAK INVALID"),
		[]byte(" MNEMONIC"),
	}}

	got, err := ReadFrame(r, gauges.FamilyPPG550.Framing(), 200*time.Millisecond)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "@NAK INVALID MNEMONIC" {
		t.Errorf("NAK frame mismatch: got %q", got)
	}
}

func TestReadFrame_TerminatorPartialBestEffort(t *testing.T) {
	r := &chunkReader{chunks: [][]byte{[]byte("@254ACK1.0")}}

	got, err := ReadFrame(r, gauges.FamilyPPG550.Framing(), 100*time.Millisecond)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "@254ACK1.0" {
		t.Errorf("unterminated data should come back as a partial frame, got %q", got)
	}
}

func TestReadFrame_IdleReturnsOnFirstQuietPoll(t *testing.T) {
	frame := []byte{0x00, 0x02, 0x06, 0x07, 0x01, 0x00, 0xDF, 0x00, 0x00, 0x12, 0x34}
	r := &chunkReader{chunks: [][]byte{frame[:5], frame[5:]}}

	start := time.Now()
	got, err := ReadFrame(r, gauges.FamilyPCG550.Framing(), time.Second)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Errorf("idle frame mismatch: got % X", got)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("idle read should return on the first quiet poll, took %s", elapsed)
	}
}

func TestReadFrame_NothingReceived(t *testing.T) {
	for _, f := range []gauges.Family{gauges.FamilyPCG550, gauges.FamilyPPG550, gauges.FamilyCDG045D} {
		got, err := ReadFrame(&chunkReader{}, f.Framing(), 20*time.Millisecond)
		if err != nil {
			t.Fatalf("%s: read: %v", f, err)
		}
		if got != nil {
			t.Errorf("%s: quiet line should yield nothing, got % X", f, got)
		}
	}
}
