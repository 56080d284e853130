package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/krazyTry/keycurve-go/store"
	"github.com/krazyTry/keycurve-go/trade"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// withPostgres opens the configured database for the length of fn.
func (a *app) withPostgres(ctx context.Context, fn func(*store.Postgres) error) error {
	dsn := a.v.GetString("database.dsn")
	if dsn == "" {
		return errors.New("database.dsn is not set (--dsn or KEYCURVE_DATABASE_DSN)")
	}
	pool, err := store.Connect(ctx, dsn, a.v.GetInt32("database.maxConns"))
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(store.NewPostgres(pool, a.logger))
}

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage curves stored in PostgreSQL",
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create the curve tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withPostgres(cmd.Context(), func(pg *store.Postgres) error {
				return pg.Migrate(cmd.Context())
			})
		},
	}

	create := &cobra.Command{
		Use:   "create-curve ID",
		Short: "Open a new curve with the loaded configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			owner, _ := cmd.Flags().GetString("owner")
			c, err := trade.NewCurve(args[0], owner, cfg)
			if err != nil {
				return err
			}
			return a.withPostgres(cmd.Context(), func(pg *store.Postgres) error {
				if err := pg.Create(cmd.Context(), c); err != nil {
					return err
				}
				a.logger.Info("curve created", zap.String("curve", c.ID), zap.String("owner", owner))
				return nil
			})
		},
	}
	create.Flags().String("owner", "", "user who owns the curve")
	_ = create.MarkFlagRequired("owner")

	status := &cobra.Command{
		Use:   "set-status ID STATUS",
		Short: "Move a curve to pending, active, frozen, launched or utility",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := trade.Status(args[1])
			switch s {
			case trade.StatusPending, trade.StatusActive, trade.StatusFrozen, trade.StatusLaunched, trade.StatusUtility:
			default:
				return fmt.Errorf("unknown status %q", args[1])
			}
			return a.withPostgres(cmd.Context(), func(pg *store.Postgres) error {
				return pg.SetStatus(cmd.Context(), args[0], s)
			})
		},
	}

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Print a curve's state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPostgres(cmd.Context(), func(pg *store.Postgres) error {
				c, err := pg.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, curveView(c))
			})
		},
	}

	cmd.AddCommand(migrate, create, status, show)
	return cmd
}
