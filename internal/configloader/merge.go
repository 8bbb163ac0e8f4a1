package configloader

import "github.com/yaklabco/pdfobjedit/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// Override scalars replace base values only when non-zero, so an unset key in
// a higher layer never clears a lower one.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Editor != "" {
		result.Editor = override.Editor
	}
	if override.Pager != "" {
		result.Pager = override.Pager
	}
	if override.OutputSuffix != "" {
		result.OutputSuffix = override.OutputSuffix
	}
	if override.ScratchSuffix != "" {
		result.ScratchSuffix = override.ScratchSuffix
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	// Ignore patterns accumulate across layers.
	if len(override.Ignore) > 0 {
		result.Ignore = append(append([]string{}, base.Ignore...), override.Ignore...)
	}

	// Booleans can only be switched on by a higher layer.
	if override.Debug {
		result.Debug = true
	}
	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}

	return &result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
