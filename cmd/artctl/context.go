package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/abelbrown/artscroll/internal/config"
	"github.com/abelbrown/artscroll/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// configPath returns --config or the default location.
func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if p := strings.TrimSpace(*c.configFlag); p != "" {
			return p
		}
	}
	return config.Path()
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.LoadFrom(c.configPath())
	})
	return c.config, c.configErr
}

// openStore opens the shown-history database named by the config.
func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	dir, err := cfg.ResolvedDataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

// eventLogPath returns the path to artscroll.events.jsonl.
func (c *commandContext) eventLogPath() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.EventsPath()
}
