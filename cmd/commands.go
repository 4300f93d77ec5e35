// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hipstereclipse/PythonSerialPortTest-sub000/pkg/gauges"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the command catalog for a device family",
	Long: `Print every command the selected family understands, with its wire
identifier, access rights, value type and unit. Use these names with
'gaugectl send' and 'gaugectl poll'.`,
	RunE: runCommands,
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}

func runCommands(cmd *cobra.Command, args []string) error {
	family, err := requireFamily()
	if err != nil {
		return err
	}
	catalog := gauges.CatalogFor(family)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COMMAND\tWIRE ID\tACCESS\tTYPE\tUNIT\tDESCRIPTION")
	for _, name := range catalog.Names() {
		def := catalog[name]
		unit := def.Unit
		if unit == "" {
			unit = "-"
		}
		marker := ""
		if def.Continuous {
			marker = " (poll)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s%s\n",
			name, def.WireID(), def.Access(), def.Type, unit, def.Description, marker)
	}
	return w.Flush()
}
