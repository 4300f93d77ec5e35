// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

var familiesCmd = &cobra.Command{
	Use:   "families",
	Short: "List supported device families",
	RunE:  runFamilies,
}

func init() {
	rootCmd.AddCommand(familiesCmd)
}

func runFamilies(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FAMILY\tPROTOCOL\tBAUD\tCOMMANDS")
	for _, name := range gauges.FamilyNames() {
		family, err := gauges.ParseFamily(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
			name, family.Protocol(), family.Serial().BaudRate, len(gauges.CatalogFor(family)))
	}
	return w.Flush()
}
