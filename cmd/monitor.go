// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/transport"
)

var monitorInterval time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive live view of the device",
	Long: `Full-screen terminal UI showing the live reading, cycle statistics
and recent history. Press ':' to type a command (e.g. 'set_speed 75'
or 'temperature'), Enter to send it, and q to quit.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", time.Second, "Time between reads")
	rootCmd.AddCommand(monitorCmd)
}

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

type reading struct {
	when time.Time
	text string
	ok   bool
}

type monitorModel struct {
	dev      transport.Device
	info     string
	poll     gauges.DeviceCommand
	interval time.Duration

	latest   reading
	history  []reading
	okCount  int
	errCount int

	input       textinput.Model
	inputActive bool
	status      string

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type monitorTickMsg time.Time

type monitorReadingMsg struct {
	resp gauges.DeviceResponse
}

type monitorSentMsg struct {
	command string
	resp    gauges.DeviceResponse
}

//////////////////////////////////////////////////////////////
// Styles
//////////////////////////////////////////////////////////////

var (
	monitorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("57")).
				Padding(0, 1)

	monitorValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("42")).
				Padding(0, 1)

	monitorErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	monitorDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	monitorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

func initialMonitorModel(dev transport.Device, info string, poll gauges.DeviceCommand, interval time.Duration) monitorModel {
	ti := textinput.New()
	ti.Placeholder = "command [value]"
	ti.CharLimit = 64
	ti.Width = 30

	return monitorModel{
		dev:      dev,
		info:     info,
		poll:     poll,
		interval: interval,
		history:  make([]reading, 0, 16),
		input:    ti,
		width:    80,
		height:   24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(monitorTickCmd(m.interval), m.readCmd())
}

func monitorTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

// readCmd runs one blocking poll cycle off the UI goroutine.
func (m monitorModel) readCmd() tea.Cmd {
	dev, poll := m.dev, m.poll
	return func() tea.Msg {
		return monitorReadingMsg{resp: dev.Send(poll)}
	}
}

func (m monitorModel) sendCmd(text string) tea.Cmd {
	dev := m.dev
	fields := strings.Fields(text)
	return func() tea.Msg {
		var resp gauges.DeviceResponse
		switch len(fields) {
		case 1:
			resp = dev.Send(gauges.Query(fields[0]))
		case 2:
			resp = dev.Send(gauges.Set(fields[0], fields[1]))
		default:
			resp = gauges.Fail(nil, "usage: command [value]")
		}
		return monitorSentMsg{command: fields[0], resp: resp}
	}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monitorTickMsg:
		return m, tea.Batch(monitorTickCmd(m.interval), m.readCmd())

	case monitorReadingMsg:
		r := reading{when: time.Now(), ok: msg.resp.Success}
		if msg.resp.Success {
			r.text = msg.resp.Formatted
			m.okCount++
		} else {
			r.text = msg.resp.Err
			m.errCount++
		}
		m.latest = r
		m.history = append(m.history, r)
		if len(m.history) > 10 {
			m.history = m.history[len(m.history)-10:]
		}

	case monitorSentMsg:
		if msg.resp.Success {
			m.status = fmt.Sprintf("%s: %s", msg.command, msg.resp.Formatted)
		} else {
			m.status = fmt.Sprintf("%s failed: %s", msg.command, msg.resp.Err)
		}
	}

	return m, nil
}

func (m monitorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputActive {
		switch msg.Type {
		case tea.KeyEsc:
			m.inputActive = false
			m.input.Blur()
			m.input.SetValue("")
			return m, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			m.inputActive = false
			m.input.Blur()
			m.input.SetValue("")
			if text == "" {
				return m, nil
			}
			m.status = "sending " + text
			return m, m.sendCmd(text)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case ":":
		m.inputActive = true
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m monitorModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(monitorTitleStyle.Render("Gaugectl Monitor - "+m.info) + "\n\n")

	value := "waiting for first reading..."
	if !m.latest.when.IsZero() {
		value = m.latest.text
		if !m.latest.ok {
			value = monitorErrStyle.Render("error: " + m.latest.text)
		}
	}
	b.WriteString(monitorBoxStyle.Render(
		fmt.Sprintf("%s\n%s", m.poll.Name, monitorValueStyle.Render(value))) + "\n")

	b.WriteString(monitorDimStyle.Render(
		fmt.Sprintf("cycles: %d ok, %d failed", m.okCount, m.errCount)) + "\n\n")

	if len(m.history) > 0 {
		b.WriteString("Recent:\n")
		for i := len(m.history) - 1; i >= 0; i-- {
			r := m.history[i]
			line := fmt.Sprintf("  %s  %s", r.when.Format("15:04:05"), r.text)
			if !r.ok {
				line = monitorErrStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if m.inputActive {
		b.WriteString("> " + m.input.View() + "\n")
	} else if m.status != "" {
		b.WriteString(m.status + "\n")
	}

	b.WriteString(monitorDimStyle.Render("q quit - : send command"))
	return b.String()
}

//////////////////////////////////////////////////////////////
// Command
//////////////////////////////////////////////////////////////

func runMonitor(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("monitor needs an interactive terminal (use 'poll' for scripted output)")
	}

	dev, info, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(dev)

	poll, ok := gauges.CatalogFor(dev.Family()).ContinuousCommand()
	if !ok {
		return fmt.Errorf("family %s has no continuous command", dev.Family())
	}

	p := tea.NewProgram(initialMonitorModel(dev, info, poll, monitorInterval), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
