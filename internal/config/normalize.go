package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWatch()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WatchRoot, err = expandPath(c.Paths.WatchRoot); err != nil {
		return fmt.Errorf("paths.watch_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWatch() {
	c.Watch.SourceDirName = strings.TrimSpace(c.Watch.SourceDirName)
	if c.Watch.SourceDirName == "" {
		c.Watch.SourceDirName = defaultSourceDirName
	}
	c.Watch.DestDirName = strings.TrimSpace(c.Watch.DestDirName)
	if c.Watch.DestDirName == "" {
		c.Watch.DestDirName = defaultDestDirName
	}
	if c.Watch.StabilityTimeout <= 0 {
		c.Watch.StabilityTimeout = defaultStabilityTimeout
	}
	if c.Watch.StabilityPollInterval <= 0 {
		c.Watch.StabilityPollInterval = defaultStabilityPollInterval
	}
	if c.Watch.EventQueueSize <= 0 {
		c.Watch.EventQueueSize = defaultEventQueueSize
	}
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Path = strings.TrimSpace(c.Catalog.Path)
	if c.Catalog.Path == "" {
		return nil
	}
	var err error
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
