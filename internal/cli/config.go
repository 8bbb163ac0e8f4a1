package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/pdfobjedit/internal/configloader"
	"github.com/yaklabco/pdfobjedit/internal/logging"
	"github.com/yaklabco/pdfobjedit/internal/ui/pretty"
	"github.com/yaklabco/pdfobjedit/pkg/config"
	"github.com/yaklabco/pdfobjedit/pkg/fsutil"
)

// ErrInvalidConfig wraps configuration loading and validation failures.
var ErrInvalidConfig = errors.New("failed to load configuration")

// ErrInvalidFlag marks a flag value the command cannot use.
var ErrInvalidFlag = errors.New("invalid flag value")

// commandContext returns the command's context, or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// resolveConfig merges every configuration source with the flags in cliCfg.
// Only explicitly set global flags are applied over the loaded files.
func resolveConfig(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, error) {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	if cliCfg == nil {
		cliCfg = &config.Config{}
	}

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	if cmd.Flags().Changed("color") {
		color, err := cmd.Flags().GetString("color")
		if err != nil {
			return nil, fmt.Errorf("get color flag: %w", err)
		}
		cliCfg.Color = config.ColorMode(color)
	}

	if debug, err := cmd.Flags().GetBool("debug"); err == nil && debug {
		cliCfg.Debug = true
		cliCfg.LogLevel = "debug"
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	logging.SetLevel(cfg.LogLevel)

	logger.Debug("configuration loaded",
		logging.FieldEditor, cfg.Editor,
		logging.FieldPager, cfg.Pager,
		logging.FieldLogLevel, cfg.LogLevel,
	)

	return cfg, nil
}

// outputStyles returns styles for the command's stdout under cfg's color mode.
func outputStyles(cmd *cobra.Command, cfg *config.Config) (*pretty.Styles, bool) {
	enabled := pretty.IsColorEnabled(string(cfg.Color), cmd.OutOrStdout())
	return pretty.NewStyles(enabled), enabled
}

// backupConfig converts the configured backup policy.
func backupConfig(cfg *config.Config) fsutil.BackupConfig {
	return fsutil.BackupConfig{
		Enabled: cfg.Backups.Enabled,
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
}
