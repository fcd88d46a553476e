// Package command defines the taskctl command tree.
//
// It uses urfave/cli/v2 for parsing. Each invocation loads configuration,
// opens the session store, and verifies any stored token before the
// selected command runs.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/ashureev/taskboard/internal/buildinfo"
	"github.com/ashureev/taskboard/internal/cli/config"
	"github.com/ashureev/taskboard/internal/cli/output"
	"github.com/ashureev/taskboard/internal/store"
)

const runtimeKey = "runtime"

// Option configures the App.
type Option func(*cli.App)

// WithRuntime injects a prebuilt runtime instead of one derived from
// configuration. The caller keeps ownership of its store.
func WithRuntime(rt *Runtime) Option {
	return func(app *cli.App) {
		app.Metadata[runtimeKey] = rt
	}
}

// App creates the CLI application.
func App(opts ...Option) *cli.App {
	app := &cli.App{
		Name:     "taskctl",
		Usage:    "Manage your tasks from the command line",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Metadata: map[string]any{},
		Commands: []*cli.Command{
			SignUpCommand(),
			SignInCommand(),
			LogoutCommand(),
			WhoAmICommand(),
			TasksCommand(),
		},
		Before: before,
		After:  after,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the YAML config file",
			Value:   config.DefaultConfigFile(),
		},
		&cli.StringFlag{
			Name:  "origin",
			Usage: "URL where the application is served",
		},
		&cli.StringFlag{
			Name:  "api-url",
			Usage: "Backend base URL used by development builds",
		},
		&cli.StringFlag{
			Name:  "session-db",
			Usage: "Path to the session database",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

func before(c *cli.Context) error {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		cfg, err := config.NewLoader(config.WithConfigFile(c.String("config"))).Load(map[string]any{
			"origin":     c.String("origin"),
			"api_url":    c.String("api-url"),
			"session_db": c.String("session-db"),
			"timeout":    c.Duration("timeout"),
			"output":     c.String("output"),
		})
		if err != nil {
			return err
		}

		kv, err := store.NewSQLite(cfg.SessionDB)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}

		rt, err = NewRuntime(cfg, kv, logger)
		if err != nil {
			_ = kv.Close()
			return err
		}
		rt.ownsStore = true
		c.App.Metadata[runtimeKey] = rt
	} else if out := c.String("output"); out != "" {
		rt.Config.Output = out
	}

	ctx, cancel := context.WithTimeout(c.Context, rt.Config.Timeout)
	defer cancel()
	rt.Session.Bootstrap(ctx, rt.Client)
	return nil
}

func after(c *cli.Context) error {
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok || !rt.ownsStore {
		return nil
	}
	return rt.Store.Close()
}

// runtimeFrom returns the runtime prepared by before.
func runtimeFrom(c *cli.Context) (*Runtime, error) {
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

// render writes data to the app's writer in the configured format.
func render(c *cli.Context, rt *Runtime, data any) error {
	return output.NewFormatter(output.Format(rt.Config.Output)).Format(c.App.Writer, data)
}

// failure reports a user-facing error. The underlying error is logged at debug.
func failure(rt *Runtime, err error, msg string) error {
	rt.Logger.Debug("Command failed", "error", err)
	return cli.Exit("error: "+msg, 1)
}
