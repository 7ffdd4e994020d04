package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/ultralight"
	"github.com/dmitrymomot/ultralight/pkg/color"
	"github.com/dmitrymomot/ultralight/pkg/diff"
	"github.com/dmitrymomot/ultralight/pkg/health"
	"github.com/dmitrymomot/ultralight/pkg/redis"
)

const defaultAddr = ":8080"

var errUnknownMode = errors.New("unknown diff mode")

// withStore loads the configuration, opens the database and passes both to
// fn. The store is closed when fn returns.
func withStore(ctx context.Context, fn func(cfg config, log *slog.Logger, st *store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	return fn(cfg, log, st)
}

func newServeCmd() *cobra.Command {
	var (
		addr    string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			if migrate {
				if err := st.migrate(ctx); err != nil {
					_ = st.close()
					return err
				}
			}
			srv, err := newServer(ctx, cfg, log, st)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = cfg.Server.Addr
			}
			if addr == "" {
				addr = defaultAddr
			}
			opts := append([]ultralight.RunOption{
				ultralight.WithContext(ctx),
				ultralight.WithServerConfig(cfg.Server),
			}, srv.runOptions()...)
			return srv.app.Run(addr, opts...)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations before serving")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	up := func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd.Context(), func(_ config, _ *slog.Logger, st *store) error {
			defer st.close()
			return st.migrate(cmd.Context())
		})
	}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE:  up,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations and update model tables",
			Args:  cobra.NoArgs,
			RunE:  up,
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest SQL migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStore(cmd.Context(), func(_ config, _ *slog.Logger, st *store) error {
					defer st.close()
					m, err := st.migrator()
					if err != nil {
						return err
					}
					return m.Down(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Log the state of every SQL migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStore(cmd.Context(), func(_ config, _ *slog.Logger, st *store) error {
					defer st.close()
					m, err := st.migrator()
					if err != nil {
						return err
					}
					return m.Status(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current SQL migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStore(cmd.Context(), func(_ config, _ *slog.Logger, st *store) error {
					defer st.close()
					m, err := st.migrator()
					if err != nil {
						return err
					}
					v, err := m.Version(cmd.Context())
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
					return err
				})
			},
		},
	)
	return cmd
}

func newCheckCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe the database and, when configured, Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStore(ctx, func(cfg config, log *slog.Logger, st *store) error {
				defer st.close()
				checks := health.Checks{"database": st.ping}
				if cfg.Redis.Enabled() {
					client, err := redis.Open(ctx, cfg.Redis.URL, cfg.Redis.Options()...)
					if err != nil {
						return err
					}
					defer client.Close()
					checks["redis"] = redis.Healthcheck(client)
				}

				rep := health.Probe(ctx, checks, health.WithTimeout(timeout), health.WithLogger(log))
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, r := range rep.Checks {
					fmt.Fprintf(w, "%s\t%s\t%dms\t%s\n", r.Name, r.Status, r.Duration, r.Error)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				return rep.Err()
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", health.DefaultTimeout, "overall probe timeout")
	return cmd
}

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the routes of the blog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes, err := loadRoutes()
			if err != nil {
				return err
			}
			d := newDispatcher(&blog{}, routes, slog.New(slog.DiscardHandler))

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "METHODS\tPATTERN\tCONTROLLER\tACTION")
			for _, e := range d.Endpoints() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", strings.Join(e.Methods, ","), e.Pattern, e.Controller, e.Action)
			}
			return w.Flush()
		},
	}
}

func newDiffCmd() *cobra.Command {
	var (
		mode  string
		stats bool
	)
	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare two text files by words, lines or characters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var split func(a, b string) []diff.Chunk
			switch mode {
			case "words":
				split = diff.Words
			case "lines":
				split = diff.Lines
			case "chars":
				split = diff.Chars
			default:
				return fmt.Errorf("%w: %q", errUnknownMode, mode)
			}

			older, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			newer, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			chunks := split(string(older), string(newer))

			out := cmd.OutOrStdout()
			if stats {
				s := diff.StatsOf(chunks)
				_, err = fmt.Fprintf(out, "equal %d, inserted %d, deleted %d, similarity %.1f%%\n",
					s.Equal, s.Inserted, s.Deleted, s.Similarity()*100)
				return err
			}
			_, err = fmt.Fprint(out, diff.Unified(chunks))
			return err
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "lines", "token granularity: words, lines or chars")
	cmd.Flags().BoolVar(&stats, "stats", false, "print change counts instead of the diff")
	return cmd
}

func newColorCmd() *cobra.Command {
	var shades, scheme int
	cmd := &cobra.Command{
		Use:   "color COLOR",
		Short: "Show a color in hex and HSL with its shades and hue scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := color.Parse(args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "color\t%s\t%s\n", c.Hex(), c.HSLString())
			fmt.Fprintf(w, "text\t%s\t%.2f:1\n", c.TextColor().Hex(), c.Contrast(c.TextColor()))
			fmt.Fprintf(w, "complement\t%s\t%s\n", c.Complement().Hex(), c.Complement().HSLString())
			for i, s := range c.Shades(shades) {
				fmt.Fprintf(w, "shade %d\t%s\t%s\n", i+1, s.Hex(), s.HSLString())
			}
			for i, s := range c.Scheme(scheme) {
				fmt.Fprintf(w, "scheme %d\t%s\t%s\n", i+1, s.Hex(), s.HSLString())
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&shades, "shades", 5, "number of shades")
	cmd.Flags().IntVar(&scheme, "scheme", 3, "number of colors in the hue scheme")
	return cmd
}
