package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// memberList adapts a members file to pipeline.MemberSource.
type memberList []family.Member

func (l memberList) List(context.Context) ([]family.Member, error) { return l, nil }

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		order   string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout [members.json]",
		Short: "Compute the tree layout",
		Long: `Compute the tree layout.

The layout command reads family members from a members.json file, or from
the configured store when no file is given, and writes the computed layout
(member boxes, marriage junctions and connectors) as JSON. The output can be
rendered with 'render'.

Results are cached; --refresh recomputes and overwrites the cached entry.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runLayout(cmd.Context(), input, output, order, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, or layout.json)")
	cmd.Flags().StringVar(&order, "order", "", "sibling order: input (default), id, name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached layouts")

	return cmd
}

// runLayout loads the members, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output, order string, noCache, refresh bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	var src pipeline.MemberSource
	if input != "" {
		members, err := graph.ReadMembersFile(input)
		if err != nil {
			return fmt.Errorf("load members %s: %w", input, err)
		}
		src = memberList(members)
	} else {
		svc, err := c.openService(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Store.Close()
		src = svc.Store
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := layoutOptions(cfg)
	if order != "" {
		opts.Order = order
	}
	opts.Refresh = refresh
	opts.Logger = c.Logger

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	members, err := src.List(ctx)
	if err != nil {
		spinner.StopWithError("Loading members failed")
		return fmt.Errorf("load members: %w", err)
	}
	spinner.SetMessage(fmt.Sprintf("Computing layout for %d members...", len(members)))
	l, cacheHit, err := runner.Layout(ctx, members, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Computed layout for %d members", len(members)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = "layout.json"
		if input != "" {
			outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
		}
	}
	if err := graph.WriteLayoutFile(*l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(l.MemberCount(), len(l.Nodes)-l.MemberCount(), len(l.Edges), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
