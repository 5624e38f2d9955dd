// Command cachesize prints the CPU cache topology found through CPUID.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/earentir/cachesize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Context carries the global flags to every command.
type Context struct {
	Debug       bool
	NoColor     bool
	CaptureFile string

	stderr io.Writer
}

// Logger returns a text logger on stderr, at debug level with --debug.
func (ctx *Context) Logger() *slog.Logger {
	var logOpts slog.HandlerOptions
	if ctx.Debug {
		logOpts.Level = slog.LevelDebug
	} else {
		logOpts.Level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(ctx.stderr, &logOpts))
}

// Resolver returns a resolver for the host, or for the capture file when one was given.
func (ctx *Context) Resolver() (*cachesize.Resolver, error) {
	logger := ctx.Logger()

	if ctx.CaptureFile == "" {
		return cachesize.New(cachesize.HostProvider(), cachesize.WithLogger(logger)), nil
	}

	data, err := cachesize.SnapshotFromFile(ctx.CaptureFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("replaying capture", slog.String("file", ctx.CaptureFile), slog.Int("entries", len(data.Entries)))
	return cachesize.New(cachesize.NewProvider(data), cachesize.WithLogger(logger)), nil
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	ctx := &Context{stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "cachesize",
		Short:         "Report CPU cache sizes",
		Long:          "cachesize reports the size and line size of the L1, L2 and L3 caches\nas read from the CPUID instruction.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if ctx.NoColor {
				color.NoColor = true
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().BoolVar(&ctx.Debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&ctx.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&ctx.CaptureFile, "capture", "", "read CPUID results from a capture file instead of the host")

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		ShowCommand(ctx),
		QueryCommand(ctx),
		CaptureCommand(ctx),
	)

	return rootCmd
}

func main() {
	rootCmd := newRootCommand(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
