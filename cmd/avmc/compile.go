package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkavm/avmc/internal/config"
	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/r1cs"
	"github.com/zkavm/avmc/internal/witness"
)

func newCompileCmd() *cobra.Command {
	var (
		configPath      string
		outPath         string
		fieldTag        string
		withWitnessFile string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "compile a source program into an R1CS constraint file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(configPath)
			if err != nil {
				return fmt.Errorf("opening config: %w", err)
			}
			defer f.Close()

			cfg, err := config.Load(f)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			cfg = cfg.StampRunID()

			stream, fld, err := compileConfig(cfg, fieldTag)
			if err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating output: %w", err)
				}
				defer file.Close()
				out = file
			}

			signalCount := r1cs.Assemble(fld, stream).NumVariables()
			constraint.RenderHeader(out, cfg.EntryFn, nowRFC3339(), fld.Name(), cfg.RunID, signalCount)
			constraint.RenderStream(out, stream)

			if withWitnessFile != "" {
				inputs, err := cfg.ParseInput(fld)
				if err != nil {
					return err
				}
				result, err := witness.Eval(fld, stream, inputs)
				if err != nil {
					return err
				}
				wf, err := os.Create(withWitnessFile)
				if err != nil {
					return fmt.Errorf("creating witness file: %w", err)
				}
				defer wf.Close()
				for _, v := range result.Vector(fld) {
					fmt.Fprintln(wf, v.String())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path for the rendered constraint file (default stdout)")
	cmd.Flags().StringVar(&fieldTag, "field", "prime", "field backend: prime or ring")
	cmd.Flags().StringVar(&withWitnessFile, "witness", "", "also solve and write the witness vector to this path")
	cmd.MarkFlagRequired("config")

	return cmd
}
