// SPDX-License-Identifier: MIT

package transport

import (
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

func newTestSim(f gauges.Family) *Simulator {
	return NewSimulator(f, SimConfig{Seed: 1, Logger: quietLogger()})
}

func TestSimulatorQuery_Pressure(t *testing.T) {
	sim := newTestSim(gauges.FamilyPPG550)

	resp := sim.Send(gauges.Query("pressure"))
	if !resp.Success {
		t.Fatalf("query failed: %s", resp.Err)
	}
	if !strings.Contains(resp.Formatted, "E-") || !strings.Contains(resp.Formatted, "mbar") {
		t.Errorf("pressure should read as scientific notation with unit, got %q", resp.Formatted)
	}
}

func TestSimulatorMnemonicText_ReadBack(t *testing.T) {
	sim := newTestSim(gauges.FamilyPPG550)

	if resp := sim.Send(gauges.Query("unit")); !resp.Success || resp.Formatted != "MBAR" {
		t.Errorf("unit should default to MBAR, got %+v", resp)
	}
	if resp := sim.Send(gauges.Set("unit", "TORR")); !resp.Success {
		t.Fatalf("set failed: %s", resp.Err)
	}
	if resp := sim.Send(gauges.Query("unit")); resp.Formatted != "TORR" {
		t.Errorf("unit should read back TORR, got %q", resp.Formatted)
	}
	if resp := sim.Send(gauges.Query("serial_number")); !resp.Success || resp.Formatted != "SIM-0001" {
		t.Errorf("serial number should read as text, got %+v", resp)
	}
}

func TestSimulatorNoise_StaysRelative(t *testing.T) {
	sim := NewSimulator(gauges.FamilyTC600, SimConfig{Noise: 0.01, Seed: 42, Logger: quietLogger()})

	for i := 0; i < 20; i++ {
		resp := sim.Send(gauges.Query("actual_speed"))
		if !resp.Success {
			t.Fatalf("query failed: %s", resp.Err)
		}
		// 833 Hz nominal with 1% jitter stays in 824..842.
		fields := strings.Fields(resp.Formatted)
		if len(fields) == 0 {
			t.Fatalf("empty reading: %q", resp.Formatted)
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			t.Fatalf("reading %q is not numeric", fields[0])
		}
		if v < 824 || v > 842 {
			t.Errorf("reading %g outside 1%% band around 833", v)
		}
	}
}

func TestSimulatorSet_RangeChecked(t *testing.T) {
	sim := newTestSim(gauges.FamilyTC600)

	if resp := sim.Send(gauges.Set("set_speed", "150")); resp.Success {
		t.Error("out-of-range setpoint should fail")
	}

	if resp := sim.Send(gauges.Set("set_speed", "50")); !resp.Success {
		t.Fatalf("set failed: %s", resp.Err)
	}
	resp := sim.Send(gauges.Query("set_speed"))
	if !resp.Success || !strings.HasPrefix(resp.Formatted, "50") {
		t.Errorf("setpoint should read back, got %+v", resp)
	}
}

func TestSimulatorSet_Boolean(t *testing.T) {
	sim := newTestSim(gauges.FamilyPCG550)

	if resp := sim.Send(gauges.Set("degas", "on")); !resp.Success {
		t.Fatalf("set failed: %s", resp.Err)
	}
	if resp := sim.Send(gauges.Query("degas")); resp.Formatted != "on" {
		t.Errorf("degas should read back on, got %q", resp.Formatted)
	}
	if resp := sim.Send(gauges.Set("degas", "maybe")); resp.Success {
		t.Error("invalid boolean should fail")
	}
}

func TestSimulatorErrors(t *testing.T) {
	sim := newTestSim(gauges.FamilyPCG550)

	if resp := sim.Send(gauges.Query("warp_drive")); resp.Success {
		t.Error("unknown command should fail")
	}
	if resp := sim.Send(gauges.Set("pressure", "1.0")); resp.Success {
		t.Error("setting a read-only value should fail")
	}

	if err := sim.Disconnect(); err != nil {
		t.Fatal(err)
	}
	if resp := sim.Send(gauges.Query("pressure")); resp.Success || !strings.Contains(resp.Err, "not connected") {
		t.Errorf("send after disconnect should fail, got %+v", resp)
	}
}

func TestSimulatorProbe(t *testing.T) {
	sim := newTestSim(gauges.FamilyBPG402)
	resp, alive := sim.Probe()
	if !alive {
		t.Fatal("connected simulator should answer probes")
	}
	if resp.Formatted != "BPG402" {
		t.Errorf("probe should report the model, got %q", resp.Formatted)
	}
}

func TestSimulatorContinuous(t *testing.T) {
	sim := newTestSim(gauges.FamilyCDG045D)

	var mu sync.Mutex
	var count int
	if err := sim.StartContinuous(5*time.Millisecond, func(r gauges.DeviceResponse) {
		mu.Lock()
		count++
		mu.Unlock()
		if !r.Success {
			t.Errorf("simulated poll failed: %s", r.Err)
		}
	}); err != nil {
		t.Fatal(err)
	}

	if resp := sim.Send(gauges.Query("pressure")); resp.Success {
		t.Error("send during polling should fail")
	}

	time.Sleep(30 * time.Millisecond)
	sim.StopContinuous()

	mu.Lock()
	stopped := count
	mu.Unlock()
	if stopped < 2 {
		t.Fatalf("expected at least 2 poll deliveries, got %d", stopped)
	}

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	after := count
	mu.Unlock()
	if after != stopped {
		t.Errorf("%d deliveries after stop", after-stopped)
	}
}
