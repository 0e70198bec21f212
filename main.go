// Command trackpaths instruments LLVM IR modules so that a coverage routine
// is called in every block lying on a path to a target source line.
//
//	trackpaths instrument --source-file demo.c --line 42 demo.ll -o demo.instr.ll
//	trackpaths paths --source-file demo.c --line 42 demo.ll
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirkon/trackpaths/internal/config"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trackpaths",
		Short:         "Instrument blocks on the paths to a target source line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newInstrumentCmd())
	rootCmd.AddCommand(newPathsCmd())

	return rootCmd
}
