// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var discoverBaud bool

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check whether a device answers on the link",
	Long: `Send the family's identification commands and report whether the
device answered. With --discover-baud the link is additionally probed at
every candidate baud rate, family default first, and left at the first
rate that answered.`,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().BoolVar(&discoverBaud, "discover-baud", false, "Probe all candidate baud rates")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	dev, info, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(dev)

	fmt.Printf("Connection: %s\n", info)

	if discoverBaud {
		discoverer, ok := dev.(interface{ DiscoverBaud() (int, error) })
		if !ok {
			return fmt.Errorf("baud discovery needs a serial connection")
		}
		baud, err := discoverer.DiscoverBaud()
		if err != nil {
			return err
		}
		fmt.Printf("Device answered at %d baud\n", baud)
		return nil
	}

	resp, alive := dev.Probe()
	if !alive {
		return fmt.Errorf("no device answered: %s", resp.Err)
	}
	fmt.Printf("Device answered: %s\n", resp.Formatted)
	return nil
}
