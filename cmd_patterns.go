package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sheikhrachel/go-life-engine/model"
	"github.com/sheikhrachel/go-life-engine/patterns"
	"github.com/sheikhrachel/go-life-engine/store"
)

// patternInfo is one row of `patterns list`.
type patternInfo struct {
	Name        string `json:"name" yaml:"name"`
	Source      string `json:"source" yaml:"source"`
	Width       int    `json:"width" yaml:"width"`
	Height      int    `json:"height" yaml:"height"`
	Alive       int    `json:"alive" yaml:"alive"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// patternExport is the structured form written by `patterns export --format yaml|json`.
type patternExport struct {
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Alive  int    `json:"alive" yaml:"alive"`
	RLE    string `json:"rle" yaml:"rle"`
}

func newPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage builtin and saved patterns",
		Long: `List, inspect, import, export and delete patterns.

Builtin patterns are always available. Imported patterns are kept in a
SQLite library (see --db).

Examples:
  life patterns list --format yaml
  life patterns show glider
  life patterns import ./gun.rle --name my-gun
  life patterns export my-gun --format cells --out gun.cells
  life patterns delete my-gun`,
	}

	cmd.AddCommand(
		newPatternsListCmd(),
		newPatternsShowCmd(),
		newPatternsImportCmd(),
		newPatternsExportCmd(),
		newPatternsDeleteCmd(),
	)

	return cmd
}

// openLibrary opens the pattern library selected by --db or the config.
func openLibrary(cmd *cobra.Command) (*store.PatternLibrary, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.OpenPatternLibrary(cmd.Context(), patternDBPath(cmd, config))
}

// lookupPattern finds name among the builtins first, then in lib.
func lookupPattern(ctx context.Context, lib *store.PatternLibrary, name string) (model.Pattern, error) {
	if p, ok := patterns.Lookup(name); ok {
		return p, nil
	}
	return lib.Get(ctx, name)
}

func newPatternsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List builtin and saved patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				format = "json"
			}

			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			infos, err := collectPatternInfo(cmd.Context(), lib)
			if err != nil {
				return err
			}
			return writePatternList(cmd.OutOrStdout(), format, infos)
		},
	}

	cmd.Flags().String("format", "text", "Output format: text, json or yaml")
	return cmd
}

func collectPatternInfo(ctx context.Context, lib *store.PatternLibrary) ([]patternInfo, error) {
	var infos []patternInfo
	for _, name := range patterns.Names() {
		p, _ := patterns.Lookup(name)
		infos = append(infos, patternInfo{
			Name:   name,
			Source: "builtin",
			Width:  p.Width(),
			Height: p.Height(),
			Alive:  p.AliveCount(),
		})
	}

	entries, err := lib.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		infos = append(infos, patternInfo{
			Name:        e.Name,
			Source:      "library",
			Width:       e.Width,
			Height:      e.Height,
			Alive:       e.Alive,
			Description: e.Description,
		})
	}
	return infos, nil
}

func writePatternList(w io.Writer, format string, infos []patternInfo) error {
	switch strings.ToLower(format) {
	case "json":
		return json.NewEncoder(w).Encode(map[string]interface{}{
			"patterns": infos,
			"count":    len(infos),
		})
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(map[string]interface{}{"patterns": infos})
	case "text", "":
		fmt.Fprintf(w, "Patterns (%d):\n\n", len(infos))
		for _, info := range infos {
			fmt.Fprintf(w, "  %-20s %-8s %3dx%-3d alive %d", info.Name, info.Source, info.Width, info.Height, info.Alive)
			if info.Description != "" {
				fmt.Fprintf(w, "  %s", info.Description)
			}
			fmt.Fprintln(w)
		}
		return nil
	default:
		return errors.Errorf("[writePatternList] unknown format %q", format)
	}
}

func newPatternsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			p, err := lookupPattern(cmd.Context(), lib, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%dx%d, %d alive)\n\n%s\n", p.Name, p.Width(), p.Height(), p.AliveCount(), p)
			return nil
		},
	}
}

func newPatternsImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Save a .rle or .cells file into the pattern library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			description, _ := cmd.Flags().GetString("description")

			p, err := readPatternFile(args[0])
			if err != nil {
				return err
			}
			if name != "" {
				p.Name = name
			}
			if _, ok := patterns.Lookup(p.Name); ok {
				return errors.Errorf("[import] %q is a builtin pattern name; pass --name", p.Name)
			}

			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			if err := lib.Save(cmd.Context(), p, description); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%dx%d, %d alive)\n", strings.ToLower(p.Name), p.Width(), p.Height(), p.AliveCount())
			return nil
		},
	}

	cmd.Flags().String("name", "", "Name to save under (default: the file's pattern name or base name)")
	cmd.Flags().String("description", "", "Free-form description")
	return cmd
}

func newPatternsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a pattern as RLE, plaintext, YAML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")

			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			p, err := lookupPattern(cmd.Context(), lib, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return errors.Wrapf(err, "[export] failed to create file: %+v", out)
				}
				defer f.Close()
				w = f
			}
			return writePattern(w, format, p)
		},
	}

	cmd.Flags().String("format", "rle", "Output format: rle, cells, yaml or json")
	cmd.Flags().String("out", "", "Write to this file instead of stdout")
	return cmd
}

func writePattern(w io.Writer, format string, p model.Pattern) error {
	export := patternExport{
		Name:   p.Name,
		Width:  p.Width(),
		Height: p.Height(),
		Alive:  p.AliveCount(),
		RLE:    patterns.FormatRLE(p),
	}

	switch strings.ToLower(format) {
	case "rle", "":
		_, err := io.WriteString(w, export.RLE)
		return err
	case "cells", "plaintext":
		_, err := io.WriteString(w, patterns.FormatPlaintext(p))
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(export)
	case "json":
		return json.NewEncoder(w).Encode(export)
	default:
		return errors.Errorf("[writePattern] unknown format %q", format)
	}
}

func newPatternsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a pattern from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			if err := lib.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", strings.ToLower(args[0]))
			return nil
		},
	}
}
