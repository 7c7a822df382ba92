package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WatchRoot) == "" {
		return errors.New("paths.watch_root must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if strings.ContainsRune(c.Watch.SourceDirName, '/') {
		return fmt.Errorf("watch.source_dir_name %q must be a bare directory name", c.Watch.SourceDirName)
	}
	if strings.ContainsRune(c.Watch.DestDirName, '/') {
		return fmt.Errorf("watch.dest_dir_name %q must be a bare directory name", c.Watch.DestDirName)
	}
	if c.Watch.SourceDirName == c.Watch.DestDirName {
		return errors.New("watch.source_dir_name and watch.dest_dir_name must differ")
	}
	if c.Watch.StabilityPollInterval > c.Watch.StabilityTimeout {
		return errors.New("watch.stability_poll_interval must not exceed watch.stability_timeout")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	return nil
}
