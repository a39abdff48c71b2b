package leaguectl

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/audit"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"
)

func (c *cli) leagueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "league",
		Short: "League operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(c.leagueCreateCommand())
	cmd.AddCommand(c.leagueShowCommand())
	cmd.AddCommand(c.leagueListCommand())
	return cmd
}

func (c *cli) leagueCreateCommand() *cobra.Command {
	var (
		user        string
		season      string
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a league owned by a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			seasonID, err := parseID("season", season)
			if err != nil {
				return err
			}
			in := league.CreateLeagueInput{SeasonID: seasonID, Name: name}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}

			return c.withBackend(cmd, func(ctx context.Context, b *Backend) error {
				l, err := b.Leagues.CreateLeague(ctx, userID, in)
				if err != nil {
					return err
				}
				return c.print(l)
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Owner user id")
	cmd.Flags().StringVar(&season, "season", "", "Season id")
	cmd.Flags().StringVar(&name, "name", "", "League name")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("season")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *cli) leagueShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <league-id>",
		Short: "Show a league and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			leagueID, err := parseID("league", args[0])
			if err != nil {
				return err
			}
			return c.withBackend(cmd, func(ctx context.Context, b *Backend) error {
				l, err := b.Leagues.GetLeagueByID(ctx, leagueID)
				if err != nil {
					return err
				}
				return c.print(l)
			})
		},
	}
}

func (c *cli) leagueListCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the leagues a user belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			return c.withBackend(cmd, func(ctx context.Context, b *Backend) error {
				leagues, err := b.Leagues.ListLeaguesForUser(ctx, userID)
				if err != nil {
					return err
				}
				if leagues == nil {
					leagues = []league.League{}
				}
				return c.print(leagues)
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (c *cli) inviteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite code operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(c.inviteCreateCommand())
	cmd.AddCommand(c.inviteUseCommand())
	cmd.AddCommand(c.inviteListCommand())
	return cmd
}

func (c *cli) inviteCreateCommand() *cobra.Command {
	var leagueFlag, user string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Mint an invite code, replacing the creator's previous one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			leagueID, err := parseID("league", leagueFlag)
			if err != nil {
				return err
			}
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			return c.withBackend(cmd, func(ctx context.Context, b *Backend) error {
				code, err := b.Invites.CreateInviteCode(ctx, leagueID, userID)
				if err != nil {
					return err
				}
				return c.print(code)
			})
		},
	}

	cmd.Flags().StringVar(&leagueFlag, "league", "", "League id")
	cmd.Flags().StringVar(&user, "user", "", "Creator user id (owner or admin)")
	_ = cmd.MarkFlagRequired("league")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (c *cli) inviteUseCommand() *cobra.Command {
	var code, user string

	cmd := &cobra.Command{
		Use:   "use",
		Short: "Redeem an invite code for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			return c.withBackend(cmd, func(ctx context.Context, b *Backend) error {
				l, err := b.Invites.UseInviteCode(ctx, code, userID)
				if err != nil {
					return err
				}
				return c.print(l)
			})
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Invite code, matched exactly")
	cmd.Flags().StringVar(&user, "user", "", "Joining user id")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (c *cli) inviteListCommand() *cobra.Command {
	var leagueFlag, user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a league's invite codes with their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			leagueID, err := parseID("league", leagueFlag)
			if err != nil {
				return err
			}
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			return c.withBackend(cmd, func(ctx context.Context, b *Backend) error {
				codes, err := b.Invites.ListInviteCodes(ctx, leagueID, userID)
				if err != nil {
					return err
				}
				return c.print(codes)
			})
		},
	}

	cmd.Flags().StringVar(&leagueFlag, "league", "", "League id")
	cmd.Flags().StringVar(&user, "user", "", "Requesting user id (owner or admin)")
	_ = cmd.MarkFlagRequired("league")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (c *cli) auditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit trail operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		leagueFlag string
		limit      int
	)
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Show the newest audit entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			obj := ""
			if leagueFlag != "" {
				leagueID, err := parseID("league", leagueFlag)
				if err != nil {
					return err
				}
				obj = audit.ObjectFor(leagueID)
			}
			return c.withBackend(cmd, func(ctx context.Context, b *Backend) error {
				entries, err := b.Audit.List(ctx, obj, limit)
				if err != nil {
					return err
				}
				if entries == nil {
					entries = []audit.Entry{}
				}
				return c.print(entries)
			})
		},
	}
	tail.Flags().StringVar(&leagueFlag, "league", "", "Only entries for this league")
	tail.Flags().IntVar(&limit, "limit", 20, "Maximum entries")

	cmd.AddCommand(tail)
	return cmd
}
