package config

import (
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a commented configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}

	return []byte(DefaultTemplateHeader() + `

# Command used to edit objects; the scratch file path is appended.
# Defaults to $VISUAL, then $EDITOR, then "vim --".
# editor: "vim --"

# Command used by view-original and view-edited.
# Defaults to $PAGER, then "less --".
# pager: "less --"

# Appended to the source path to name the exported container.
output_suffix: ` + DefaultOutputSuffix + `

# Appended to the source path to name the editor scratch file.
scratch_suffix: ` + DefaultScratchSuffix + `

# Styled output: auto, always, or never
color: auto

# Log level: debug, info, warn, or error
log_level: info

# Keep the previous export as <output>.bak before overwriting it.
backups:
  enabled: false
  mode: sidecar

# Glob patterns skipped by scan, e.g. "vendor/**" or "*.draft.pdf"
# ignore: []

# Concurrent workers used by scan; 0 means one per CPU.
jobs: 0
`), nil
}

// templateToJSON renders the same defaults as JSON. Comments are dropped.
func templateToJSON() ([]byte, error) {
	cfg := map[string]any{
		"output_suffix":  DefaultOutputSuffix,
		"scratch_suffix": DefaultScratchSuffix,
		"color":          string(ColorAuto),
		"log_level":      DefaultLogLevel,
		"backups": map[string]any{
			"enabled": false,
			"mode":    "sidecar",
		},
		"jobs": 0,
	}

	jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(jsonBytes, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# pdfobjedit configuration
# See: https://github.com/yaklabco/pdfobjedit`
}
