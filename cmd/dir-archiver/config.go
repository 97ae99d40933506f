package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raoulx24/dir-archiver/internal/config"
	"github.com/raoulx24/dir-archiver/internal/logging"
)

const defaultConfigPath = "./config.yaml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate a configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigPath
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := loadConfig(path)
		if err != nil {
			return err
		}
		if err := validateConfig(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: configuration is valid\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

// loadConfig loads .env from the working directory, then the config file.
// An empty path yields the defaults.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if path == "" {
		cfg := config.Defaults()
		return &cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// invalidConfigError lists every validation failure.
type invalidConfigError struct {
	errs []error
}

func (e *invalidConfigError) Error() string {
	msg := "configuration validation failed:"
	for _, err := range e.errs {
		msg += "\n  - " + err.Error()
	}
	return msg
}

func (e *invalidConfigError) Unwrap() []error { return e.errs }

func validateConfig(cfg *config.Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return &invalidConfigError{errs: errs}
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (logging.Logger, func(), error) {
	log, closer, err := logging.New(logging.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: cfg.Output,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, func() { _ = closer.Close() }, nil
}
