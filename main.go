package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/focusa/pkg/auth"
	"github.com/harrisonrobin/focusa/pkg/config"
	"github.com/harrisonrobin/focusa/pkg/datetime"
	"github.com/harrisonrobin/focusa/pkg/focus"
	"github.com/harrisonrobin/focusa/pkg/google"
	"github.com/harrisonrobin/focusa/pkg/logging"
	"github.com/harrisonrobin/focusa/pkg/parser"
	"github.com/harrisonrobin/focusa/pkg/planner"
	"github.com/harrisonrobin/focusa/pkg/tasks"
	"github.com/harrisonrobin/focusa/pkg/tui"
)

var version = "dev"

type flags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
	Calendar   string
}

func main() {
	var (
		f         flags
		cfg       *config.Config
		logCloser func()
		source    *google.Source
	)

	app := &cli.Command{
		Name:    "focusa",
		Usage:   "Plan tasks and work through them in focus cycles",
		Version: version,
		Description: `focusa keeps a prioritised task list, turns free text into tasks,
mirrors your Google Calendar and runs a work/break focus timer.

Run 'focusa' with no arguments to open the planner.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("FOCUSA_CONFIG"),
				Value:       config.DefaultPath(),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("FOCUSA_LOG_LEVEL"),
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <config-dir>/focusa.log)",
				Sources:     cli.EnvVars("FOCUSA_LOG_FILE"),
				Destination: &f.LogFile,
			},
			&cli.StringFlag{
				Name:        "calendar",
				Usage:       "Google Calendar to mirror (overrides config)",
				Sources:     cli.EnvVars("FOCUSA_CALENDAR"),
				Destination: &f.Calendar,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			cfg, err = config.Load(f.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if f.Calendar != "" {
				cfg.Calendar = f.Calendar
			}

			level := firstNonEmpty(f.LogLevel, cfg.LogLevel, "info")
			logFile := firstNonEmpty(f.LogFile, cfg.LogFile)
			if logFile == "" {
				logFile = filepath.Join(filepath.Dir(f.ConfigPath), "focusa.log")
			}

			logger, closer, err := logging.New(level, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if source != nil {
				source.Close()
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() > 0 {
				return fmt.Errorf("unknown command %q. Run 'focusa --help' for usage", c.Args().First())
			}
			var p *planner.Planner
			p, source = newPlanner(cfg)
			return tui.Run(ctx, p, logging.Component("tui"))
		},
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Turn free text into a task and print it without saving",
				UsageText: "focusa parse <text>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() == 0 {
						return errors.New("text is required")
					}
					p, _ := newPlanner(cfg)
					rec, err := p.ParseText(ctx, strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return err
					}
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(rec)
				},
			},
			{
				Name:  "auth",
				Usage: "Authorise access to Google Calendar",
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := auth.RemoveToken(); err != nil {
						return err
					}
					if err := auth.Authorize(ctx); err != nil {
						return fmt.Errorf("authentication failed: %w", err)
					}
					path, _ := auth.TokenPath()
					fmt.Printf("Authentication successful! Token saved to %s\n", path)
					return nil
				},
			},
			{
				Name:  "calendar",
				Usage: "Print the upcoming events that would be mirrored",
				Action: func(ctx context.Context, c *cli.Command) error {
					var p *planner.Planner
					p, source = newPlanner(cfg)
					recs, err := p.FetchExternal(ctx)
					if err != nil {
						return err
					}
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(recs)
				},
			},
			{
				Name:  "config",
				Usage: "Show or change settings",
				Commands: []*cli.Command{
					{
						Name:  "show",
						Usage: "Print the effective configuration",
						Action: func(ctx context.Context, c *cli.Command) error {
							out, err := yaml.Marshal(cfg)
							if err != nil {
								return err
							}
							_, err = os.Stdout.Write(out)
							return err
						},
					},
					{
						Name:      "set",
						Usage:     "Set a single value, e.g. focus.work 50",
						UsageText: "focusa config set <key> <value>",
						Action: func(ctx context.Context, c *cli.Command) error {
							if c.Args().Len() != 2 {
								return errors.New("usage: focusa config set <key> <value>")
							}
							onDisk, err := config.Load(f.ConfigPath)
							if err != nil {
								return err
							}
							if err := onDisk.Set(c.Args().Get(0), c.Args().Get(1)); err != nil {
								return err
							}
							if err := config.Save(f.ConfigPath, onDisk); err != nil {
								return err
							}
							fmt.Printf("%s set to %s\n", c.Args().Get(0), c.Args().Get(1))
							return nil
						},
					},
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newPlanner(cfg *config.Config) (*planner.Planner, *google.Source) {
	dt := datetime.New(time.Local, logging.Component("datetime"))
	engine := focus.NewEngine(cfg.Focus, logging.Component("focus"))
	store := tasks.New(dt, engine, logging.Component("tasks"))

	var tp planner.TaskParser
	if key := cfg.Parser.APIKey(); key != "" {
		tp = parser.NewClient(key,
			parser.WithBaseURL(cfg.Parser.BaseURL),
			parser.WithModel(cfg.Parser.Model),
			parser.WithLogger(logging.Component("parser")),
		)
	} else {
		log.Warn().Str("env", cfg.Parser.APIKeyEnv).Msg("no parser API key; text capture disabled")
	}

	source := google.NewSource(cfg.Calendar, dt, logging.Component("google"))
	return planner.New(store, engine, tp, source, logging.Component("planner")), source
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
