// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

var rawCmd = &cobra.Command{
	Use:   "raw <bytes...>",
	Short: "Send a hand-assembled frame and dump the response",
	Long: `Convert free-text input to bytes, write it to the device unchanged,
and display whatever comes back. The input format is recognized
automatically:

  10101010            binary digits, right-padded to full bytes
  0x03 0x00           prefixed hex
  \x03\x00            escaped hex
  3 0 16 0            decimal byte values
  3,0,16,0            comma-separated decimal
  48 65 6C 6C 6F      bare hex pairs
  PR3?                plain ASCII

The response display format follows --format.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRaw,
}

func init() {
	rootCmd.AddCommand(rawCmd)
}

func runRaw(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	format, _ := gauges.ClassifyManual(text)
	data, err := gauges.ManualToBytes(format, text)
	if err != nil {
		return err
	}

	dev, info, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(dev)

	if verbose {
		fmt.Printf("Connection: %s\n", info)
	}
	fmt.Printf("TX (%d bytes): %s\n", len(data), gauges.RenderBytes(gauges.FormatHex, data))

	resp := dev.SendRaw(data)
	if !resp.Success {
		return fmt.Errorf("send failed: %s", resp.Err)
	}
	fmt.Printf("RX (%d bytes): %s\n", len(resp.Raw), renderRaw(resp.Raw))
	return nil
}
