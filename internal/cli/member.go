package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
)

// memberCommand creates the member management command.
func (c *CLI) memberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "member",
		Aliases: []string{"members"},
		Short:   "Manage family members in the configured store",
	}

	cmd.AddCommand(c.memberListCommand())
	cmd.AddCommand(c.memberAddCommand())
	cmd.AddCommand(c.memberRemoveCommand())

	return cmd
}

func (c *CLI) memberListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List family members",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			svc, err := c.openService(ctx, cfg)
			if err != nil {
				return err
			}
			defer svc.Store.Close()

			members, err := svc.Members(ctx)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				printInfo("No family members yet")
				printNextStep("Add one", appName+` member add --name "Ada Lovelace"`)
				return nil
			}
			fmt.Println(memberTable(members))
			printDetail("%d member(s) in tree %s", len(members), cfg.Tree)
			return nil
		},
	}
}

func (c *CLI) memberAddCommand() *cobra.Command {
	var (
		m     family.Member
		actor string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a family member",
		Long: `Add a family member.

Parents and spouse are given by member ID (see 'member list'). The new member
is recorded as added by --as, which defaults to $KINTREE_ACTOR or $USER; only
that user can later remove it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMemberAdd(cmd.Context(), m, actor)
		},
	}

	cmd.Flags().StringVar(&m.Name, "name", "", "full name (required)")
	cmd.Flags().StringVar(&m.BirthDate, "birth-date", "", "birth date, YYYY-MM-DD")
	cmd.Flags().StringVar(&m.Gender, "gender", "", "male, female, non_binary or not_specified")
	cmd.Flags().StringVar(&m.Relationship, "relationship", "", "relationship label, e.g. grandmother")
	cmd.Flags().StringVar(&m.ParentID, "parent", "", "first parent ID")
	cmd.Flags().StringVar(&m.Parent2ID, "parent2", "", "second parent ID")
	cmd.Flags().StringVar(&m.SpouseID, "spouse", "", "spouse ID")
	cmd.Flags().StringVar(&m.Location, "location", "", "place of residence")
	cmd.Flags().StringVar(&m.Bio, "bio", "", "short biography")
	cmd.Flags().StringVar(&actor, "as", defaultActor(), "acting user")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (c *CLI) runMemberAdd(ctx context.Context, m family.Member, actor string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	svc, err := c.openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Store.Close()

	created, err := svc.CreateMember(ctx, m, actor)
	if err != nil {
		return err
	}
	if err := c.invalidateSession(ctx); err != nil {
		c.Logger.Warn("failed to invalidate layout session", "error", err)
	}

	printSuccess("Added %s", StyleHighlight.Render(created.Name))
	printKeyValue("ID", created.ID)
	return nil
}

func (c *CLI) memberRemoveCommand() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a family member",
		Long: `Remove a family member.

References from other members (parents, spouse) are cleared first. Only the
user who added the member may remove it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			svc, err := c.openService(ctx, cfg)
			if err != nil {
				return err
			}
			defer svc.Store.Close()

			if err := svc.DeleteMember(ctx, args[0], actor); err != nil {
				return err
			}
			if err := c.invalidateSession(ctx); err != nil {
				c.Logger.Warn("failed to invalidate layout session", "error", err)
			}
			printSuccess("Removed %s", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "as", defaultActor(), "acting user")
	return cmd
}

// invalidateSession drops the cached session layout after a member change.
func (c *CLI) invalidateSession(ctx context.Context) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer runner.Close()
	sess, err := c.openSession(ctx, cfg, runner)
	if err != nil {
		return err
	}
	return sess.Invalidate(ctx)
}
