package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"

	"resource-dispatcher/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks the configuration and returns all problems at once.
// Port 0 is accepted so tests can bind an ephemeral port.
func Validate(cfg Config) error {
	var errs ValidationErrors

	if strings.TrimSpace(cfg.Label) == "" {
		errs.Add("label", "is required")
	} else if msgs := validation.IsQualifiedName(cfg.Label); len(msgs) > 0 {
		errs.Add("label", "is not a valid label key: "+strings.Join(msgs, ", "), cfg.Label)
	}

	if strings.TrimSpace(cfg.Folder) == "" {
		errs.Add("folder", "is required")
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		errs.Add("port", "must be between 0 and 65535", cfg.Port)
	}

	switch cfg.Strategy {
	case StrategyStatic, StrategyTemplate:
	default:
		errs.Add("strategy", fmt.Sprintf("must be %q or %q", StrategyStatic, StrategyTemplate), cfg.Strategy)
	}

	if cfg.ResyncAfterSeconds <= 0 {
		errs.Add("resyncAfterSeconds", "must be positive", cfg.ResyncAfterSeconds)
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		errs.Add("logLevel", err.Error(), cfg.LogLevel)
	}
	switch logging.Format(cfg.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs.Add("logFormat", fmt.Sprintf("must be %q or %q", logging.FormatText, logging.FormatJSON), cfg.LogFormat)
	}

	seenDirs := make(map[string]bool)
	for i, mapping := range cfg.Kinds {
		field := fmt.Sprintf("kinds[%d]", i)
		dir := filepath.Clean(mapping.Directory)
		switch {
		case strings.TrimSpace(mapping.Directory) == "":
			errs.Add(field+".directory", "is required")
		case filepath.IsAbs(dir) || strings.ContainsRune(dir, filepath.Separator) || dir == "." || dir == "..":
			errs.Add(field+".directory", "must be a single directory name relative to the folder", mapping.Directory)
		case seenDirs[dir]:
			errs.Add(field+".directory", "is listed more than once", mapping.Directory)
		}
		seenDirs[dir] = true

		if _, err := mapping.Kind.GroupVersionKind(); err != nil {
			errs.Add(field+".kind", err.Error(), mapping.Kind)
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
