package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/config"
	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/session"
	"github.com/matzehuels/kintree/pkg/store"
)

// moveCommand creates the move command, the CLI form of dragging a member.
func (c *CLI) moveCommand() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "move <id> <x> <y>",
		Short: "Pin a member at a canvas position",
		Long: `Pin a member at a canvas position.

The position is stored and marked custom, so later layouts keep the member
where it was put. Generation alignment no longer applies to it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return kerrors.Wrap(kerrors.ErrCodeInvalidPosition, err, "invalid x coordinate %q", args[1])
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return kerrors.Wrap(kerrors.ErrCodeInvalidPosition, err, "invalid y coordinate %q", args[2])
			}
			return c.runMove(cmd.Context(), args[0], x, y, actor)
		},
	}

	cmd.Flags().StringVar(&actor, "as", defaultActor(), "acting user")
	return cmd
}

func (c *CLI) runMove(ctx context.Context, id string, x, y float64, actor string) error {
	return c.withSession(ctx, func(cfg *config.Config, svc *store.Service, sess *session.Session) error {
		members, err := svc.Members(ctx)
		if err != nil {
			return err
		}
		if _, _, err := sess.Refresh(ctx, members); err != nil {
			return fmt.Errorf("compute layout: %w", err)
		}
		err = sess.Move(ctx, id, x, y, func(ctx context.Context) error {
			return svc.UpdateMemberPosition(ctx, id, x, y, actor)
		})
		if errors.Is(err, session.ErrUnknownNode) {
			return kerrors.Wrap(kerrors.ErrCodeMemberNotFound, err, "family member not found: %s", id)
		}
		if err != nil {
			return err
		}
		printSuccess("Moved %s to (%s, %s)", id, StyleNumber.Render(fmtCoord(x)), StyleNumber.Render(fmtCoord(y)))
		return nil
	})
}

// resetCommand creates the reset command.
func (c *CLI) resetCommand() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every pinned position",
		Long: `Clear every pinned position.

All stored positions are removed, so the next layout is computed entirely
from the family relationships.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, func(cfg *config.Config, svc *store.Service, sess *session.Session) error {
				if err := svc.ResetTreeLayout(ctx, actor); err != nil {
					return err
				}
				if err := sess.Invalidate(ctx); err != nil {
					return err
				}
				printSuccess("Reset layout of tree %s", cfg.Tree)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actor, "as", defaultActor(), "acting user")
	return cmd
}

// withSession opens the store, runner and session of the configured tree
// for the duration of fn.
func (c *CLI) withSession(ctx context.Context, fn func(*config.Config, *store.Service, *session.Session) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	svc, err := c.openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Store.Close()

	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sess, err := c.openSession(ctx, cfg, runner)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	return fn(cfg, svc, sess)
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
