// SPDX-License-Identifier: MIT
//
// Gaugectl - Vacuum gauge and turbo pump serial communicator
//
// A CLI tool for talking to vacuum gauge transmitters and turbo pump
// controllers over their serial protocols.

package main

import (
	"os"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
