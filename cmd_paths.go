package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sirkon/trackpaths/internal/annotations"
	"github.com/sirkon/trackpaths/internal/config"
	"github.com/sirkon/trackpaths/internal/llvmir"
	"github.com/sirkon/trackpaths/internal/pathtrack"
)

// functionPaths describes what would be instrumented in a function.
type functionPaths struct {
	Function string     `yaml:"function"`
	Target   string     `yaml:"target,omitempty"`
	TargetID uint64     `yaml:"target_id,omitempty"`
	Paths    [][]string `yaml:"paths,omitempty"`
	Blocks   []string   `yaml:"blocks,omitempty"`
}

type modulePaths struct {
	Module    string             `yaml:"module"`
	Line      int                `yaml:"line"`
	Strategy  pathtrack.Strategy `yaml:"strategy"`
	Functions []functionPaths    `yaml:"functions"`
}

func newPathsCmd() *cobra.Command {
	format := outputFormatText

	cmd := &cobra.Command{
		Use:   "paths <module.ll>",
		Short: "List the blocks leading to the target line without changing the module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.TargetLine <= 0 {
				return fmt.Errorf("%w: target line must be positive, got %d", config.ErrInvalid, cfg.TargetLine)
			}

			m, err := llvmir.Load(args[0])
			if err != nil {
				return err
			}

			res := collectPaths(m, cfg)
			if format == outputFormatYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(res); err != nil {
					return fmt.Errorf("encode paths: %w", err)
				}
				return enc.Close()
			}

			return printPaths(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().Var(&format, "format", "output format (text, yaml)")

	return cmd
}

func collectPaths(m *ir.Module, cfg config.Config) modulePaths {
	res := modulePaths{
		Module:   m.SourceFilename,
		Line:     cfg.TargetLine,
		Strategy: cfg.Strategy,
	}

	for _, name := range annotations.Scan(llvmir.Annotations(m), cfg.Annotation) {
		f := llvmir.Func(m, name)
		if f == nil {
			continue
		}

		item := functionPaths{Function: name}
		g := llvmir.Graph(f)
		target, ok := pathtrack.Locate(g, cfg.TargetLine)
		if ok {
			plan := pathtrack.Trace(g, target, cfg.Strategy)
			item.Target = g.BlockName(target)
			item.TargetID = pathtrack.BlockID(g.Name, target)
			for _, path := range plan.Paths {
				item.Paths = append(item.Paths, blockNames(g, path))
			}
			item.Blocks = blockNames(g, plan.Blocks)
		}

		res.Functions = append(res.Functions, item)
	}

	return res
}

func blockNames(g *pathtrack.Graph, blocks []int) []string {
	res := make([]string, 0, len(blocks))
	for _, b := range blocks {
		res = append(res, g.BlockName(b))
	}

	return res
}

func printPaths(w io.Writer, res modulePaths) error {
	var buf strings.Builder
	_, _ = fmt.Fprintf(&buf, "module %s, line %d, strategy %s\n", res.Module, res.Line, res.Strategy)
	for _, fn := range res.Functions {
		if fn.Target == "" {
			_, _ = fmt.Fprintf(&buf, "%s: target line not found\n", fn.Function)
			continue
		}

		_, _ = fmt.Fprintf(&buf, "%s: target block %s (id %#x)\n", fn.Function, fn.Target, fn.TargetID)
		for _, path := range fn.Paths {
			_, _ = fmt.Fprintf(&buf, "  path: %s\n", strings.Join(path, " -> "))
		}
		_, _ = fmt.Fprintf(&buf, "  blocks: %s\n", strings.Join(fn.Blocks, " "))
	}

	if _, err := io.WriteString(w, buf.String()); err != nil {
		return fmt.Errorf("print paths: %w", err)
	}

	return nil
}
