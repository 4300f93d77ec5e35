// SPDX-License-Identifier: MIT

package transport

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

// pollTimeout bounds a single Line.Read. It has to be short enough that
// the frame readers notice the deadline promptly, and long enough that a
// 9600-baud device never looks idle mid-frame.
const pollTimeout = 50 * time.Millisecond

// Device is the consumer-facing surface shared by the serial transport
// and the simulator: everything a command line or a polling UI needs.
type Device interface {
	Family() gauges.Family
	Connected() bool
	// Send runs one blocking command cycle. All failures come back in
	// the response, never as an error.
	Send(cmd gauges.DeviceCommand) gauges.DeviceResponse
	// SendRaw writes a manually assembled frame and reads one response.
	SendRaw(frame []byte) gauges.DeviceResponse
	// Probe checks whether a device answers on the link.
	Probe() (gauges.DeviceResponse, bool)
	// StartContinuous polls the family's continuous command at the given
	// interval, delivering every response (including failures) to sink.
	StartContinuous(interval time.Duration, sink func(gauges.DeviceResponse)) error
	// StopContinuous stops the polling loop and waits for it to finish.
	StopContinuous()
	Disconnect() error
}

var _ Device = (*Transport)(nil)

// RS485Config enables half-duplex direction control on a shared pair.
type RS485Config struct {
	// Address is the 1-254 drop address written into each frame.
	Address int
	// TxSettle is held after raising RTS before the first byte goes out.
	TxSettle time.Duration
	// RxSettle is held after the output drains before RTS drops again.
	RxSettle time.Duration
}

// DefaultRS485Config returns the timing that works with common USB
// RS485 adapters.
func DefaultRS485Config(address int) *RS485Config {
	return &RS485Config{
		Address:  address,
		TxSettle: 2 * time.Millisecond,
		RxSettle: 2 * time.Millisecond,
	}
}

// Config assembles a Transport.
type Config struct {
	Family gauges.Family
	// RS485 enables multidrop mode when non-nil.
	RS485 *RS485Config
	// ReadTimeout overrides the family's response deadline when positive.
	ReadTimeout time.Duration
	// Logger defaults to the logrus standard logger.
	Logger *logrus.Logger
	// Trace captures raw exchanges when non-nil.
	Trace *TraceRecorder
}

// Transport owns one Line and runs the blocking send/receive cycle for
// a single device. All entry points serialize on one mutex, so a
// Transport is safe for concurrent use, one command at a time.
type Transport struct {
	mu     sync.Mutex
	line   Line
	codec  gauges.Codec
	family gauges.Family
	rs485  *RS485Config
	read   time.Duration
	log    *logrus.Entry
	trace  *TraceRecorder

	polling  bool
	pollStop chan struct{}
	pollDone chan struct{}
}

// New wraps an open Line in a Transport for the configured family.
func New(line Line, cfg Config) (*Transport, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	codecCfg := gauges.CodecConfig{}
	if cfg.RS485 != nil {
		if cfg.RS485.Address < 1 || cfg.RS485.Address > 254 {
			return nil, fmt.Errorf("rs485 address %d out of range 1-254", cfg.RS485.Address)
		}
		codecCfg.RS485 = true
		codecCfg.Address = cfg.RS485.Address
	}

	read := cfg.ReadTimeout
	if read <= 0 {
		read = cfg.Family.Serial().ReadTimeout
	}

	if err := line.SetReadTimeout(pollTimeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	if cfg.RS485 != nil {
		// Idle in receive direction.
		if err := line.SetRTS(false); err != nil {
			return nil, fmt.Errorf("failed to set RTS: %w", err)
		}
	}

	return &Transport{
		line:   line,
		codec:  gauges.NewCodec(cfg.Family, codecCfg),
		family: cfg.Family,
		rs485:  cfg.RS485,
		read:   read,
		log:    logger.WithField("family", cfg.Family.String()),
		trace:  cfg.Trace,
	}, nil
}

// Family returns the device family this transport speaks.
func (t *Transport) Family() gauges.Family { return t.family }

// Catalog returns the family command table.
func (t *Transport) Catalog() gauges.Catalog { return t.codec.Catalog() }

// Connected reports whether the line is open.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.line != nil
}

// Send encodes the command, writes it, and reads one response frame.
// While continuous polling is active the line belongs to the poll loop
// and Send fails immediately instead of queuing.
func (t *Transport) Send(cmd gauges.DeviceCommand) gauges.DeviceResponse {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.polling {
		commandFailures.WithLabelValues("busy").Inc()
		return gauges.Fail(nil, "continuous polling active, stop it before sending commands")
	}
	return t.exchange(cmd)
}

// exchange runs one command cycle. Callers hold t.mu.
func (t *Transport) exchange(cmd gauges.DeviceCommand) gauges.DeviceResponse {
	if t.line == nil {
		commandFailures.WithLabelValues("disconnected").Inc()
		return gauges.Fail(nil, "not connected")
	}

	frame, hint, err := t.codec.Encode(cmd)
	if err != nil {
		commandFailures.WithLabelValues("encode").Inc()
		return gauges.Fail(nil, "encode %s: %v", cmd.Name, err)
	}

	raw, err := t.writeAndRead(frame)
	if err != nil {
		commandFailures.WithLabelValues("io").Inc()
		return gauges.Fail(nil, "line error: %v", err)
	}
	if len(raw) == 0 {
		commandFailures.WithLabelValues("timeout").Inc()
		return gauges.Fail(nil, "no response within %s", t.read)
	}

	resp := t.codec.Decode(raw, hint)
	if !resp.Success {
		commandFailures.WithLabelValues("decode").Inc()
		t.log.WithFields(logrus.Fields{
			"command": cmd.Name,
			"raw":     fmt.Sprintf("% X", raw),
		}).Debug(resp.Err)
	}
	return resp
}

// SendRaw writes a manually assembled frame and reads one response,
// bypassing the catalog. The response carries the raw bytes only.
func (t *Transport) SendRaw(frame []byte) gauges.DeviceResponse {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.polling {
		return gauges.Fail(nil, "continuous polling active, stop it before sending commands")
	}
	if t.line == nil {
		return gauges.Fail(nil, "not connected")
	}

	raw, err := t.writeAndRead(frame)
	if err != nil {
		return gauges.Fail(nil, "line error: %v", err)
	}
	if len(raw) == 0 {
		return gauges.Fail(nil, "no response within %s", t.read)
	}
	return gauges.OK(raw, gauges.RenderBytes(gauges.SuggestDisplayFormat(raw), raw))
}

// writeAndRead performs the wire half of a cycle, including the RS485
// direction dance. Callers hold t.mu.
func (t *Transport) writeAndRead(frame []byte) ([]byte, error) {
	if t.rs485 != nil {
		if err := t.line.SetRTS(true); err != nil {
			return nil, err
		}
		time.Sleep(t.rs485.TxSettle)
	}

	if _, err := t.line.Write(frame); err != nil {
		return nil, err
	}
	if err := t.line.Drain(); err != nil {
		return nil, err
	}
	framesWritten.Inc()
	if t.trace != nil {
		t.trace.Record(TraceTX, frame)
	}

	if t.rs485 != nil {
		time.Sleep(t.rs485.RxSettle)
		if err := t.line.SetRTS(false); err != nil {
			return nil, err
		}
	}

	raw, err := ReadFrame(t.line, t.codec.Framing(), t.read)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		framesRead.Inc()
		if t.trace != nil {
			t.trace.Record(TraceRX, raw)
		}
	}
	return raw, nil
}

// Probe sends the family's probe commands until one answers. The bool
// reports whether the device is alive; the response is the first
// successful answer or the last failure.
func (t *Transport) Probe() (gauges.DeviceResponse, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var last gauges.DeviceResponse
	for _, cmd := range t.codec.ProbeCommands() {
		last = t.exchange(cmd)
		if last.Success {
			return last, true
		}
	}
	if last.Err == "" {
		last = gauges.Fail(nil, "no probe commands defined")
	}
	return last, false
}

// DiscoverBaud probes the link at each candidate rate, family default
// first, and leaves the line at the first rate that answered. The line
// is restored to the family default when nothing answers.
func (t *Transport) DiscoverBaud() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.polling {
		return 0, fmt.Errorf("continuous polling active")
	}
	if t.line == nil {
		return 0, fmt.Errorf("not connected")
	}

	for _, baud := range t.family.BaudCandidates() {
		if err := t.line.SetBaud(baud); err != nil {
			return 0, fmt.Errorf("failed to switch to %d baud: %w", baud, err)
		}
		t.log.WithField("baud", baud).Debug("probing")

		alive := false
		for _, cmd := range t.codec.ProbeCommands() {
			if resp := t.exchange(cmd); resp.Success {
				alive = true
				break
			}
		}
		if alive {
			t.log.WithField("baud", baud).Info("device answered")
			return baud, nil
		}
	}

	def := t.family.Serial().BaudRate
	if err := t.line.SetBaud(def); err != nil {
		return 0, fmt.Errorf("failed to restore %d baud: %w", def, err)
	}
	return 0, fmt.Errorf("no response at any candidate baud rate")
}

// Reconfigure switches the line speed. Only legal while idle.
func (t *Transport) Reconfigure(baud int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.polling {
		return fmt.Errorf("continuous polling active")
	}
	if t.line == nil {
		return fmt.Errorf("not connected")
	}
	return t.line.SetBaud(baud)
}

// StartContinuous launches the polling loop for the family's continuous
// command. Every cycle's response, successful or not, goes to sink, so
// one corrupted frame never kills the loop.
func (t *Transport) StartContinuous(interval time.Duration, sink func(gauges.DeviceResponse)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.polling {
		return fmt.Errorf("continuous polling already active")
	}
	if t.line == nil {
		return fmt.Errorf("not connected")
	}

	cmd, ok := t.codec.Catalog().ContinuousCommand()
	if !ok {
		return fmt.Errorf("family %s has no continuous command", t.family)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	t.polling = true
	t.pollStop = stop
	t.pollDone = done

	t.log.WithFields(logrus.Fields{
		"command":  cmd.Name,
		"interval": interval,
	}).Info("continuous polling started")

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.mu.Lock()
				resp := t.exchange(cmd)
				t.mu.Unlock()
				pollCycles.Inc()

				// A stop that raced the exchange wins: nothing is
				// delivered after StopContinuous returns.
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

// StopContinuous signals the polling loop and waits for it to exit. The
// wait is bounded by one full command cycle, so a wedged line cannot
// hang the caller forever.
func (t *Transport) StopContinuous() {
	t.mu.Lock()
	if !t.polling {
		t.mu.Unlock()
		return
	}
	stop := t.pollStop
	done := t.pollDone
	t.polling = false
	t.pollStop = nil
	t.pollDone = nil
	t.mu.Unlock()

	close(stop)
	select {
	case <-done:
		t.log.Info("continuous polling stopped")
	case <-time.After(t.read + pollTimeout + time.Second):
		t.log.Warn("polling loop did not stop within the grace period")
	}
}

// Disconnect stops polling and closes the line.
func (t *Transport) Disconnect() error {
	t.StopContinuous()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.line == nil {
		return nil
	}
	err := t.line.Close()
	t.line = nil
	return err
}
