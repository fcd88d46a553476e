package command

import (
	"log/slog"
	"net/http"

	"github.com/ashureev/taskboard/internal/buildinfo"
	"github.com/ashureev/taskboard/internal/cli/config"
	"github.com/ashureev/taskboard/internal/client"
	"github.com/ashureev/taskboard/internal/session"
	"github.com/ashureev/taskboard/internal/store"
)

// Runtime bundles the collaborators a command needs.
type Runtime struct {
	Config  *config.Config
	Store   store.KV
	Session *session.Session
	Client  *client.Client
	Logger  *slog.Logger

	ownsStore bool
}

// NewRuntime wires a session over kv and a client that reads its token from
// that session.
func NewRuntime(cfg *config.Config, kv store.KV, logger *slog.Logger) (*Runtime, error) {
	return newRuntime(cfg, kv, logger, buildinfo.CurrentMode())
}

func newRuntime(cfg *config.Config, kv store.KV, logger *slog.Logger, mode buildinfo.BuildMode) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sess := session.New(kv, logger)
	c, err := client.New(client.Config{
		Mode:       mode,
		Origin:     cfg.Origin,
		DevAPIURL:  cfg.APIURL,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}, sess)
	if err != nil {
		return nil, err
	}

	logger.Debug("Client configured", "mode", mode, "base_url", c.BaseURL())

	return &Runtime{
		Config:  cfg,
		Store:   kv,
		Session: sess,
		Client:  c,
		Logger:  logger,
	}, nil
}
