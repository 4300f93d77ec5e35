// SPDX-License-Identifier: MIT

package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Device flags
	familyName   string
	simulate     bool
	rs485        bool
	rs485Address int
	readTimeout  time.Duration

	// Output flags
	verbose    bool
	traceFile  string
	displayFmt string
)

var rootCmd = &cobra.Command{
	Use:   "gaugectl",
	Short: "Vacuum gauge and turbo pump serial communicator",
	Long: `Gaugectl - A CLI tool for talking to vacuum gauge transmitters and
turbo pump controllers over their serial protocols.

Supports the binary CRC16-framed transmitters (PCG550, PSG550, MAG500,
MPG500, BPG402, BPG552, BCG552), capacitance diaphragm gauges (CDG
series), ASCII mnemonic transmitters (PPG550, PPG570) and the TC600
turbo pump controller.

Connection modes:
  Serial:    --port /dev/ttyUSB0 --family PPG550
  Bridge:    --url ws://host/path --family PPG550 [--username user]
  Simulator: --simulate --family PPG550

For bridge authentication, the password is read from the GAUGECTL_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell
history.`,
	Version: "1.0.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
	},
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 0, "Baud rate override (default: family setting)")

	// WebSocket bridge flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "Serial bridge WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Device flags
	rootCmd.PersistentFlags().StringVarP(&familyName, "family", "f", "", "Device family (see 'gaugectl families')")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Answer from a simulated device instead of a port")
	rootCmd.PersistentFlags().BoolVar(&rs485, "rs485", false, "Drive the line in RS485 half-duplex mode")
	rootCmd.PersistentFlags().IntVar(&rs485Address, "rs485-address", 1, "RS485 drop address (1-254)")
	rootCmd.PersistentFlags().DurationVar(&readTimeout, "read-timeout", 0, "Response deadline override (default: family setting)")

	// Output flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&traceFile, "trace", "", "Write a CBOR capture of all wire traffic to this file")
	rootCmd.PersistentFlags().StringVar(&displayFmt, "format", "auto", "Raw byte display format (auto, hex, decimal, binary, ascii)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
