package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func contractsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "Contract operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "expire",
		Short: "Mark active contracts past their end date as expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.contracts.ExpireDue(cmd.Context())
			if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
				return perr
			}
			if err != nil {
				return fmt.Errorf("%d contract(s) failed to expire: %w", result.Failed, err)
			}
			return nil
		},
	})
	return cmd
}
