package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/yaklabco/pdfobjedit/pkg/config"
)

// envVarPrefix is the prefix for all pdfobjedit environment variables.
const envVarPrefix = "PDFOBJEDIT_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"EDITOR":          {"editor", envTypeString, "Editor command line; the scratch path is appended"},
	"PAGER":           {"pager", envTypeString, "Pager command line"},
	"OUTPUT_SUFFIX":   {"output_suffix", envTypeString, "Suffix naming the exported container"},
	"SCRATCH_SUFFIX":  {"scratch_suffix", envTypeString, "Suffix naming the editor scratch file"},
	"COLOR":           {"color", envTypeString, "Styled output: auto, always, or never"},
	"LOG_LEVEL":       {"log_level", envTypeString, "Log level: debug, info, warn, or error"},
	"BACKUPS_ENABLED": {"backups.enabled", envTypeBool, "Keep the previous export: true or false"},
	"BACKUPS_MODE":    {"backups.mode", envTypeString, "Backup mode: sidecar or none"},
	"JOBS":            {"jobs", envTypeInt, "Concurrent scan workers; 0 means one per CPU"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with PDFOBJEDIT_ (e.g., PDFOBJEDIT_EDITOR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, n)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "editor":
		cfg.Editor = value
	case "pager":
		cfg.Pager = value
	case "output_suffix":
		cfg.OutputSuffix = value
	case "scratch_suffix":
		cfg.ScratchSuffix = value
	case "color":
		cfg.Color = config.ColorMode(value)
	case "log_level":
		cfg.LogLevel = value
	case "backups.mode":
		cfg.Backups.Mode = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "backups.enabled":
		cfg.Backups.Enabled = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// ListEnvVars returns the supported environment variables, sorted, with their
// descriptions.
func ListEnvVars() [][2]string {
	vars := make([][2]string, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, [2]string{envVarPrefix + suffix, mapping.description})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i][0] < vars[j][0] })
	return vars
}
