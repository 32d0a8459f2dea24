package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/lehigh-university-libraries/transcribe/internal/languages"
	"github.com/spf13/cobra"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the supported translation languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tNATIVE")
			for _, l := range languages.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", l.Code, l.Name, l.Native)
			}
			return w.Flush()
		},
	}
}
