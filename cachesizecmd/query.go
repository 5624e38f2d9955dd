package main

import (
	"fmt"

	"github.com/earentir/cachesize"
	"github.com/spf13/cobra"
)

type queryCommand struct {
	*Context

	// flags
	level     uint8
	cacheType string
	line      bool
}

// QueryCommand returns the command printing a single cache size or line size.
func QueryCommand(ctx *Context) *cobra.Command {
	var cmd queryCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:   "query",
		Short: "Print the size of a single cache",
		Long: "Print the size in bytes of the cache at --level of --type, or its line size with --line.\n" +
			"Prints \"unknown\" followed by the reason when the value cannot be determined.",
		Example:           "  cachesize query --level 2 --type unified\n  cachesize query --level 1 --type data --line",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              cmd.run,
	}

	// flags
	cobraCmd.Flags().Uint8Var(&cmd.level, "level", 1, "cache level")
	cobraCmd.Flags().StringVar(&cmd.cacheType, "type", "data", "cache type: data, instruction or unified")
	cobraCmd.Flags().BoolVar(&cmd.line, "line", false, "print the line size instead of the total size")

	return cobraCmd
}

func (cmd *queryCommand) run(c *cobra.Command, _ []string) error {
	t, err := cachesize.ParseCacheType(cmd.cacheType)
	if err != nil {
		return err
	}

	resolver, err := cmd.Resolver()
	if err != nil {
		return fmt.Errorf("failed to open cpuid source: %w", err)
	}

	var (
		v      int
		reason cachesize.Reason
	)
	if cmd.line {
		v, reason = resolver.LineSizeReason(cmd.level, t)
	} else {
		v, reason = resolver.SizeReason(cmd.level, t)
	}

	if reason != cachesize.OK {
		fmt.Fprintf(c.OutOrStdout(), "unknown (%s)\n", reason)
		return nil
	}
	fmt.Fprintf(c.OutOrStdout(), "%d\n", v)
	return nil
}
