// Package leaguectl implements the operator CLI for leagues and invite codes.
package leaguectl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/api"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/audit"
)

// AuditReader lists audit entries.
type AuditReader interface {
	List(ctx context.Context, obj string, limit int) ([]audit.Entry, error)
}

// Backend is what the commands operate on.
type Backend struct {
	Leagues api.Leagues
	Invites api.Invites
	Audit   AuditReader
	Migrate func(ctx context.Context) error
	Close   func()
}

// Connector opens a Backend for dsn.
type Connector func(ctx context.Context, dsn string) (*Backend, error)

type cli struct {
	connect Connector
	out     io.Writer
	dsn     string
	format  string
}

// NewRootCommand builds the leaguectl command tree.
func NewRootCommand(connect Connector, out io.Writer) *cobra.Command {
	c := &cli{connect: connect, out: out}

	cmd := &cobra.Command{
		Use:           "leaguectl",
		Short:         "Operate fantasy leagues and invite codes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&c.dsn, "dsn", os.Getenv("DB_DSN"), "PostgreSQL connection string")
	cmd.PersistentFlags().StringVarP(&c.format, "output", "o", "yaml", "Output format (yaml|json)")

	cmd.AddCommand(c.migrateCommand())
	cmd.AddCommand(c.tokenCommand())
	cmd.AddCommand(c.leagueCommand())
	cmd.AddCommand(c.inviteCommand())
	cmd.AddCommand(c.auditCommand())
	return cmd
}

func (c *cli) withBackend(cmd *cobra.Command, fn func(ctx context.Context, b *Backend) error) error {
	if c.dsn == "" {
		return errors.New("--dsn or DB_DSN is required")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := c.connect(ctx, c.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if b.Close != nil {
		defer b.Close()
	}
	return fn(ctx, b)
}

func (c *cli) print(v any) error {
	switch c.format {
	case "json":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		// Round-trip through JSON so YAML keys follow the json tags.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(c.out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", c.format)
	}
}

func parseID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func (c *cli) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(cmd, func(ctx context.Context, b *Backend) error {
				if b.Migrate == nil {
					return errors.New("migrations unavailable")
				}
				if err := b.Migrate(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(c.out, "migrations applied")
				return err
			})
		},
	}
}

func (c *cli) tokenCommand() *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API bearer token for a user (JWT_SIGNING_KEY)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			key := os.Getenv("JWT_SIGNING_KEY")
			if key == "" {
				return errors.New("JWT_SIGNING_KEY is required")
			}
			token, err := api.SignToken([]byte(key), userID, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, token)
			return err
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User id placed in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
