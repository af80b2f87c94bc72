// Command dormctl runs the dormdesk batch operations from a shell: the
// monthly bill run, contract expiry and development tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:           "dormctl",
		Short:         "dormdesk operations tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		billsCmd(&opts),
		contractsCmd(&opts),
		tokenCmd(),
	)
	return root
}

type rootOptions struct {
	logLevel string
}
