package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-glitch/dsp/params"
)

func runParams(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("params", stderr)
	preset := fs.Bool("preset", false, "print the defaults as a JSON preset instead of a table")
	filter := fs.String("filter", "", "only show ids with this prefix (e.g. bc_)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	reg := params.Default()
	if *preset {
		return reg.Save(stdout)
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tKind\tMin\tMax\tStep\tDefault\tUnit\n")
	fmt.Fprintf(tw, "--\t----\t----\t---\t---\t----\t-------\t----\n")

	for _, d := range reg.Definitions() {
		if !strings.HasPrefix(d.ID, *filter) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%g\t%g\t%g\t%s\n",
			d.ID, d.Name, d.Kind, d.Min, d.Max, d.Step, d.Default, d.Unit)
	}

	return tw.Flush()
}
