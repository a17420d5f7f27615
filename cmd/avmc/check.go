package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkavm/avmc/internal/constraint"
)

func newCheckCmd() *cobra.Command {
	var fieldTag string

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "parse a precompiled constraint file and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pickField(fieldTag)
			if err != nil {
				return err
			}
			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			pf, err := constraint.Parse(f, string(body))
			if err != nil {
				return err
			}
			rendered := constraint.RenderString(pf.Stream)
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&fieldTag, "field", "prime", "field backend: prime or ring")
	return cmd
}
