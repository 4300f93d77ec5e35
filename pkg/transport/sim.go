// SPDX-License-Identifier: MIT

package transport

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

var _ Device = (*Simulator)(nil)

// SimConfig tunes a simulated device.
type SimConfig struct {
	// Noise is the relative jitter applied to numeric readings, e.g.
	// 0.01 for one percent. Zero disables it.
	Noise float64
	// Delay is slept before each response, imitating a real line.
	Delay time.Duration
	// Seed fixes the noise source for reproducible runs; zero picks one.
	Seed int64
	// Logger defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// Simulator answers catalog commands for one family from an in-memory
// state table, with optional noise and response delay. It implements
// the same Device interface as the serial transport, so everything
// above the transport runs unmodified against it.
type Simulator struct {
	mu        sync.Mutex
	family    gauges.Family
	catalog   gauges.Catalog
	cfg       SimConfig
	log       *logrus.Entry
	rng       *rand.Rand
	connected bool

	numbers  map[string]float64
	switches map[string]bool
	texts    map[string]string

	polling  bool
	pollStop chan struct{}
	pollDone chan struct{}
}

// NewSimulator builds a simulated device with plausible initial state.
func NewSimulator(family gauges.Family, cfg SimConfig) *Simulator {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Simulator{
		family:    family,
		catalog:   gauges.CatalogFor(family),
		cfg:       cfg,
		log:       logger.WithFields(logrus.Fields{"family": family.String(), "simulated": true}),
		rng:       rand.New(rand.NewSource(seed)),
		connected: true,
		numbers: map[string]float64{
			"pressure":          9.8e-4,
			"temperature":       24.3,
			"actual_speed":      833,
			"set_speed":         100,
			"drive_current":     2.45,
			"drive_power":       18,
			"motor_temperature": 41,
			"pressure_unit":     0,
			"unit":              0,
			"set_unit":          0,
			"error_status":      0,
			"status":            0,
		},
		switches: map[string]bool{
			"degas":      false,
			"standby":    false,
			"motor_pump": true,
			"heating":    false,
		},
		texts: map[string]string{
			"product_name":     family.String(),
			"software_version": "1.02",
			"firmware_version": "010200",
			"serial_number":    "SIM-0001",
			"device_type":      family.String(),
			"error_code":       "000000",
			"unit":             "MBAR",
		},
	}
	return s
}

// Family returns the simulated device family.
func (s *Simulator) Family() gauges.Family { return s.family }

// Catalog returns the family command table.
func (s *Simulator) Catalog() gauges.Catalog { return s.catalog }

// Connected reports whether the simulated link is up.
func (s *Simulator) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Send answers one catalog command from the state table.
func (s *Simulator) Send(cmd gauges.DeviceCommand) gauges.DeviceResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.polling {
		return gauges.Fail(nil, "continuous polling active, stop it before sending commands")
	}
	return s.answer(cmd)
}

// answer runs one simulated cycle. Callers hold s.mu.
func (s *Simulator) answer(cmd gauges.DeviceCommand) gauges.DeviceResponse {
	if !s.connected {
		return gauges.Fail(nil, "not connected")
	}
	if s.cfg.Delay > 0 {
		time.Sleep(s.cfg.Delay)
	}

	def, ok := s.catalog.Lookup(cmd.Name)
	if !ok {
		return gauges.Fail(nil, "unknown command %q for family %s", cmd.Name, s.family)
	}

	if cmd.Kind == gauges.CommandSet {
		return s.store(def, cmd.Value())
	}
	if !def.Readable {
		return gauges.Fail(nil, "command %q is write-only", cmd.Name)
	}
	return s.read(def)
}

func (s *Simulator) store(def gauges.CommandDefinition, value string) gauges.DeviceResponse {
	if !def.Writable {
		return gauges.Fail(nil, "command %q is read-only", def.Name)
	}
	if value == "" {
		return gauges.Fail(nil, "set %q requires a value", def.Name)
	}

	switch def.Type {
	case gauges.ParamBool:
		on, err := parseSimBool(value)
		if err != nil {
			return gauges.Fail(nil, "set %q: %v", def.Name, err)
		}
		s.switches[def.Name] = on
		return gauges.OK(nil, boolText(on))
	case gauges.ParamAsciiFixedWidth:
		s.texts[def.Name] = value
		return gauges.OK(nil, value)
	}

	if v, err := strconv.ParseFloat(value, 64); err == nil {
		if def.HasRange && (v < def.Min || v > def.Max) {
			return gauges.Fail(nil, "value %g out of range %g-%g for %q", v, def.Min, def.Max, def.Name)
		}
		s.numbers[def.Name] = v
		return gauges.OK(nil, value)
	}

	s.texts[def.Name] = value
	return gauges.OK(nil, value)
}

func (s *Simulator) read(def gauges.CommandDefinition) gauges.DeviceResponse {
	switch def.Type {
	case gauges.ParamBool:
		return gauges.OK(nil, boolText(s.switches[def.Name]))
	case gauges.ParamAsciiFixedWidth:
		if t, ok := s.texts[def.Name]; ok {
			return gauges.OK(nil, t)
		}
	}
	if v, ok := s.numbers[def.Name]; ok {
		return gauges.OK(nil, s.formatNumber(def, s.jitter(v)))
	}
	if t, ok := s.texts[def.Name]; ok {
		return gauges.OK(nil, t)
	}
	return gauges.OK(nil, "0")
}

// jitter applies the configured relative noise to a reading.
func (s *Simulator) jitter(v float64) float64 {
	if s.cfg.Noise <= 0 {
		return v
	}
	return v * (1 + s.cfg.Noise*(2*s.rng.Float64()-1))
}

func (s *Simulator) formatNumber(def gauges.CommandDefinition, v float64) string {
	var text string
	switch def.Type {
	case gauges.ParamFixedPointEn20, gauges.ParamLogFixedPointEn26, gauges.ParamAsciiFloat:
		text = fmt.Sprintf("%.3E", v)
	case gauges.ParamFloat32:
		text = fmt.Sprintf("%.2f", v)
	default:
		text = fmt.Sprintf("%.0f", v)
	}
	if def.Unit != "" {
		text += " " + def.Unit
	}
	return text
}

// SendRaw is accepted but not interpreted: the simulator has no wire
// decoder, so it echoes the frame back.
func (s *Simulator) SendRaw(frame []byte) gauges.DeviceResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return gauges.Fail(nil, "not connected")
	}
	if s.cfg.Delay > 0 {
		time.Sleep(s.cfg.Delay)
	}
	return gauges.OK(frame, gauges.RenderBytes(gauges.SuggestDisplayFormat(frame), frame))
}

// Probe always answers when the simulated link is up.
func (s *Simulator) Probe() (gauges.DeviceResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return gauges.Fail(nil, "not connected"), false
	}
	resp := gauges.OK(nil, s.texts["product_name"])
	return resp, true
}

// StartContinuous mirrors the transport's polling loop against the
// simulated state.
func (s *Simulator) StartContinuous(interval time.Duration, sink func(gauges.DeviceResponse)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.polling {
		return fmt.Errorf("continuous polling already active")
	}
	if !s.connected {
		return fmt.Errorf("not connected")
	}

	cmd, ok := s.catalog.ContinuousCommand()
	if !ok {
		return fmt.Errorf("family %s has no continuous command", s.family)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.polling = true
	s.pollStop = stop
	s.pollDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				resp := s.answer(cmd)
				s.mu.Unlock()

				select {
				case <-stop:
					return
				default:
				}
				sink(resp)
			}
		}
	}()

	return nil
}

// StopContinuous stops the polling loop and waits for it to exit.
func (s *Simulator) StopContinuous() {
	s.mu.Lock()
	if !s.polling {
		s.mu.Unlock()
		return
	}
	stop := s.pollStop
	done := s.pollDone
	s.polling = false
	s.pollStop = nil
	s.pollDone = nil
	s.mu.Unlock()

	close(stop)
	<-done
}

// Disconnect tears the simulated link down; later sends fail.
func (s *Simulator) Disconnect() error {
	s.StopContinuous()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func parseSimBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value %q", value)
}

func boolText(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
