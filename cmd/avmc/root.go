// Command avmc is the compiler driver of SPEC_FULL.md §4.10: it wires
// C5 (include) through C9 (r1cs) into two subcommands, `compile` and
// `check`, in the style of cue-lang-cue's cmd/cue driver (one root
// cobra.Command, one file per subcommand, flags bound with pflag).
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
	root := &cobra.Command{
		Use:           "avmc",
		Short:         "arithmetizing VM compiler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCompileCmd())
	root.AddCommand(newCheckCmd())
	return root
}
