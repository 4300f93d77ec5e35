// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

var sendCmd = &cobra.Command{
	Use:   "send <command> [value]",
	Short: "Send one catalog command to the device",
	Long: `Query a device parameter, or set it when a value is given.

Command names come from the family catalog ('gaugectl commands').

Examples:
  gaugectl send pressure --family PPG550 --port /dev/ttyUSB0
  gaugectl send set_speed 75 --family TC600 --port /dev/ttyUSB0`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	dev, info, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(dev)

	var request gauges.DeviceCommand
	if len(args) == 2 {
		request = gauges.Set(args[0], args[1])
	} else {
		request = gauges.Query(args[0])
	}

	if verbose {
		fmt.Printf("Connection: %s\n", info)
	}

	resp := dev.Send(request)
	if !resp.Success {
		return fmt.Errorf("%s: %s", args[0], resp.Err)
	}

	fmt.Println(resp.Formatted)
	if verbose && len(resp.Raw) > 0 {
		fmt.Printf("Raw: %s\n", renderRaw(resp.Raw))
	}
	return nil
}
