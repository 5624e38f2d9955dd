package main

import (
	"fmt"

	"github.com/earentir/cachesize"
	"github.com/spf13/cobra"
)

type captureCommand struct {
	*Context
}

// CaptureCommand returns the command writing a CPUID capture to a file.
func CaptureCommand(ctx *Context) *cobra.Command {
	var cmd captureCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:   "capture FILE",
		Short: "Write the CPUID leaves of this host to a file",
		Long: "Write every standard and extended CPUID leaf of this host to FILE as JSON.\n" +
			"The file can be replayed on any machine with --capture.",
		Args: cobra.ExactArgs(1),
		RunE: cmd.run,
	}

	return cobraCmd
}

func (cmd *captureCommand) run(c *cobra.Command, args []string) error {
	src := cachesize.HostSource()
	if cmd.CaptureFile != "" {
		// re-capture a capture, dropping entries outside the walked leaves
		data, err := cachesize.SnapshotFromFile(cmd.CaptureFile)
		if err != nil {
			return err
		}
		src = data
	}
	if src == nil {
		return fmt.Errorf("CPUID is not available on this host")
	}

	data := cachesize.Capture(src)
	if err := data.WriteFile(args[0]); err != nil {
		return err
	}

	fmt.Fprintf(c.OutOrStdout(), "captured %d leaves to %s\n", len(data.Entries), args[0])
	return nil
}
