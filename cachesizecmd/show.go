package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/earentir/cachesize"
	"github.com/fatih/color"
	kcpuid "github.com/klauspost/cpuid/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type showCommand struct {
	*Context

	// flags
	format     string
	crosscheck bool
}

// Crosscheck holds the cache sizes other sources report for the host.
type Crosscheck struct {
	// Values reported by github.com/klauspost/cpuid/v2, -1 when unknown.
	L1I       int `json:"l1i" yaml:"l1i"`
	L1D       int `json:"l1d" yaml:"l1d"`
	L2        int `json:"l2" yaml:"l2"`
	L3        int `json:"l3" yaml:"l3"`
	CacheLine int `json:"cache_line" yaml:"cache_line"`
	// PadSize is the compile-time line size of golang.org/x/sys/cpu.
	PadSize int `json:"pad_size" yaml:"pad_size"`
}

type showOutput struct {
	cachesize.Report `yaml:",inline"`
	Crosscheck       *Crosscheck `json:"crosscheck,omitempty" yaml:"crosscheck,omitempty"`
}

// ShowCommand returns the command printing the cache topology.
func ShowCommand(ctx *Context) *cobra.Command {
	var cmd showCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:               "show",
		Short:             "Print the cache topology",
		Long:              "Print the vendor, the strategy used to read the caches and the size and line size of every cache",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().StringVar(&cmd.format, "format", "text", "output format: text, json or yaml")
	cobraCmd.Flags().BoolVar(&cmd.crosscheck, "crosscheck", false, "also print the values of github.com/klauspost/cpuid for the host (ignored with --capture)")

	return cobraCmd
}

func hostCrosscheck() *Crosscheck {
	return &Crosscheck{
		L1I:       kcpuid.CPU.Cache.L1I,
		L1D:       kcpuid.CPU.Cache.L1D,
		L2:        kcpuid.CPU.Cache.L2,
		L3:        kcpuid.CPU.Cache.L3,
		CacheLine: kcpuid.CPU.CacheLine,
		PadSize:   cachesize.PadSize,
	}
}

func (cmd *showCommand) run(c *cobra.Command, _ []string) error {
	resolver, err := cmd.Resolver()
	if err != nil {
		return fmt.Errorf("failed to open cpuid source: %w", err)
	}

	out := showOutput{Report: resolver.Report()}
	if cmd.crosscheck {
		if cmd.CaptureFile != "" {
			// the reference values always describe the host, not the capture
			cmd.Logger().Warn("ignoring --crosscheck when replaying a capture", slog.String("file", cmd.CaptureFile))
		} else {
			out.Crosscheck = hostCrosscheck()
		}
	}

	w := c.OutOrStdout()
	switch cmd.format {
	case "json":
		jsonString, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal to JSON: %w", err)
		}
		fmt.Fprintf(w, "%s\n", jsonString)
	case "yaml":
		yamlString, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		fmt.Fprintf(w, "%s", yamlString)
	case "text":
		return printText(w, out)
	default:
		return fmt.Errorf("unknown format %q", cmd.format)
	}

	return nil
}

func printText(w io.Writer, out showOutput) error {
	bold := color.New(color.Bold)
	rep := out.Report

	if !rep.Available {
		fmt.Fprintln(w, "CPUID is not available on this host")
	} else {
		fmt.Fprintf(w, "  Vendor:            %s\n", rep.Vendor)
		fmt.Fprintf(w, "  Family:            %d (0x%x)\n", rep.Family, rep.Family)
		fmt.Fprintf(w, "  Model:             %d (0x%x)\n", rep.Model, rep.Model)
		fmt.Fprintf(w, "  Stepping:          %d\n", rep.Stepping)
		if rep.Microarchitecture != "" {
			fmt.Fprintf(w, "  Microarchitecture: %s\n", rep.Microarchitecture)
		}
		if rep.Hybrid != nil {
			fmt.Fprintf(w, "  Core Type:         %s\n", rep.Hybrid.CoreTypeName)
		}
		fmt.Fprintf(w, "  Strategy:          %s\n", rep.Strategy)
	}
	fmt.Fprintln(w)

	if err := printCacheTable(w, rep.Caches); err != nil {
		return err
	}

	if out.Crosscheck != nil {
		x := out.Crosscheck
		fmt.Fprintln(w)
		bold.Fprintln(w, "Crosscheck (host)")
		fmt.Fprintf(w, "  klauspost/cpuid:   L1i %s, L1d %s, L2 %s, L3 %s, line %d B\n",
			formatBytes(x.L1I), formatBytes(x.L1D), formatBytes(x.L2), formatBytes(x.L3), x.CacheLine)
		fmt.Fprintf(w, "  x/sys/cpu pad:     %d B\n", x.PadSize)
	}
	return nil
}

// cacheTableHeader is the header row of the cache table.
var cacheTableHeader = []string{"cache", "level", "type", "size", "line size"}

func cacheTableRows(caches []cachesize.CacheReport) [][]string {
	rows := make([][]string, 0, len(caches))
	for _, cr := range caches {
		row := []string{cr.Name, fmt.Sprint(cr.Level), cr.Type.String()}
		if cr.Known() {
			row = append(row, formatBytes(cr.Size), fmt.Sprintf("%d B", cr.LineSize))
		} else {
			row = append(row, fmt.Sprintf("unknown (%s)", cr.Reason), "")
		}
		rows = append(rows, row)
	}
	return rows
}

func printCacheTable(w io.Writer, caches []cachesize.CacheReport) error {
	options := []tablewriter.Option{
		tablewriter.WithRenderer(renderer.NewColorized(renderer.ColorizedConfig{
			Header: renderer.Tint{
				FG: renderer.Colors{color.Bold}, // Bold headers
			},
			Column: renderer.Tint{
				FG: renderer.Colors{color.Reset},
				BG: renderer.Colors{color.Reset},
			},
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off, ShowFooter: tw.Off, BetweenRows: tw.Off, BetweenColumns: tw.Off},
				Lines: tw.Lines{
					ShowTop:        tw.Off,
					ShowBottom:     tw.Off,
					ShowHeaderLine: tw.Off,
					ShowFooterLine: tw.Off,
				},
				CompactMode: tw.On,
			},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	}

	table := tablewriter.NewTable(w, options...)
	table.Header(cacheTableHeader)
	if err := table.Bulk(cacheTableRows(caches)); err != nil {
		return fmt.Errorf("error adding caches to table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering table: %w", err)
	}
	return nil
}

// formatBytes renders a byte count in the largest unit that divides it.
func formatBytes(n int) string {
	switch {
	case n < 0:
		return "unknown"
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
