package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/proposals/internal/core"
)

func optionsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Print the allowed approach and funding source values",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := core.AvailableOptions()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(opts)
			}

			fmt.Fprintln(out, "approach:")
			for _, v := range opts.Approaches {
				fmt.Fprintf(out, "  - %s\n", v)
			}
			fmt.Fprintln(out, "fundingSource:")
			for _, v := range opts.FundingSources {
				fmt.Fprintf(out, "  - %s\n", v)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
