package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/framereel/framereel-agent/internal/config"
	"github.com/framereel/framereel-agent/internal/db"
	"github.com/framereel/framereel-agent/internal/history"
	"github.com/framereel/framereel-agent/internal/logging"
)

type commandContext struct {
	configFlag  *string
	dataDirFlag *string

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(configFlag, dataDirFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		dataDirFlag: dataDirFlag,
	}
}

// ensureConfig loads configuration once. Flags are applied through the
// environment layer so they win over the file and the process env.
func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		if path := flagValue(c.configFlag); path != "" {
			os.Setenv(config.EnvConfigFile, path)
		}
		if dir := flagValue(c.dataDirFlag); dir != "" {
			os.Setenv(config.EnvDataDir, dir)
		}
		cfg, err := config.New()
		if err != nil {
			c.configErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
			c.configErr = fmt.Errorf("failed to create data dir: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// cliLogger logs to w, which keeps stdout free for command output.
func (c *commandContext) cliLogger(w io.Writer) *slog.Logger {
	level := config.DefaultLogLevel
	if c.config != nil {
		level = c.config.LogLevel()
	}
	return logging.New(w, level)
}

// historyStore opens the database and returns the history service and its
// repository. The caller closes the returned database.
func (c *commandContext) historyStore(logger *slog.Logger) (*db.DB, *history.Service, *history.SQLiteRepository, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repo := history.NewRepository(database.Conn())
	svc := history.NewService(repo, history.Limits{
		MaxItems: cfg.HistoryMaxItems(),
		MaxBytes: cfg.HistoryMaxBytes(),
	}, logger)
	return database, svc, repo, nil
}

// findEntry resolves an entry by full ID or unique ID prefix.
func findEntry(ctx context.Context, svc *history.Service, ref string) (*history.Entry, error) {
	if e, err := svc.Get(ctx, ref); err == nil {
		return e, nil
	}
	entries, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	var match *history.Entry
	for _, e := range entries {
		if !strings.HasPrefix(e.ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("history id %q is ambiguous", ref)
		}
		match = e
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", history.ErrNotFound, ref)
	}
	return match, nil
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
