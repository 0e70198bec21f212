package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirkon/trackpaths/internal/config"
	"github.com/sirkon/trackpaths/internal/llvmir"
	"github.com/sirkon/trackpaths/internal/logging"
	"github.com/sirkon/trackpaths/internal/trackpass"
)

func newInstrumentCmd() *cobra.Command {
	var (
		output  string
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "instrument <module.ll>",
		Short: "Insert coverage recorder calls into blocks leading to the target line",
		Long: `Run the path tracking pass over a textual LLVM IR module.

The module is written to the output whether it was changed or not, and the
source file name of the module is appended to the report file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logging.NewWithComponent(cfg.Logging(cmd.ErrOrStderr()), "trackpass")

			m, err := llvmir.Load(args[0])
			if err != nil {
				return err
			}

			pass, err := trackpass.Open(cfg.Pass(), cfg.Report, log)
			if err != nil {
				return err
			}
			defer pass.Close()

			res := pass.Run(m)
			log.Info().
				Str("module", args[0]).
				Stringer("outcome", res.Code).
				Stringer("preserved", res.Preserved).
				Msg("pass finished")
			if summary {
				pass.Reporter().PrintSummary(cmd.ErrOrStderr())
			}

			out := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer logging.Close(log, file, "output")
				out = file
			}

			return llvmir.Write(out, m)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout if empty")
	cmd.Flags().BoolVar(&summary, "summary", false, "print pass events to stderr")

	return cmd
}
