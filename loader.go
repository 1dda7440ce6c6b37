// Package loader is the public entry point for loading an Open-PSA
// MEF model: Load reads one or more XML documents and returns a fully
// validated, in-memory Model (spec §1, §6). The real work lives in the
// internal packages this file re-exports a narrow facade over, the way
// the teacher's cmd/cli/main.go called down into internal/app rather
// than reimplementing it at the entry point.
package loader

import (
	"context"
	"log/slog"

	"github.com/openpsa-mef/loader/internal/ctxlog"
	"github.com/openpsa-mef/loader/internal/loader"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/openpsa-mef/loader/internal/settings"
	"github.com/openpsa-mef/loader/internal/xmlio"
	"github.com/openpsa-mef/loader/internal/xmlio/stdxml"
)

// Model is the loaded, validated in-memory model graph (spec §3).
type Model = model.Model

// Settings carries mission_time and probability_analysis, the two
// caller-supplied options (spec §6).
type Settings = settings.Settings

// Parser and SchemaValidator are the external-collaborator interfaces
// a caller may supply its own implementation of (spec §6).
type Parser = xmlio.Parser
type SchemaValidator = xmlio.SchemaValidator

// DefaultSettings returns the permissive default Settings.
func DefaultSettings() Settings { return settings.Default() }

// LoadSettingsHCL reads an optional HCL-formatted settings file. The
// MEF model itself is always XML; this is only a convenience for the
// small ambient configuration surface (spec §6, internal/settings).
func LoadSettingsHCL(path string) (Settings, error) { return settings.LoadHCL(path) }

// Options configures a Load call.
type Options struct {
	// Parser reads MEF XML into the document tree Load walks. Defaults
	// to the standard-library-backed stdxml.Parser if nil.
	Parser Parser
	// Validate checks a parsed document against the MEF RelaxNG schema
	// before element interpretation (spec §6). Defaults to a no-op
	// validator if nil; supply a real RelaxNG-backed implementation for
	// schema enforcement.
	Validate SchemaValidator
	// Settings carries the caller's mission_time and probability_analysis.
	Settings Settings
}

// Load reads, registers, resolves, and validates the MEF model
// described by paths, returning the fully populated Model (spec §2, §6).
func Load(ctx context.Context, paths []string, opts Options) (*Model, error) {
	parser := opts.Parser
	if parser == nil {
		parser = stdxml.NewParser()
	}
	if ctxlog.LoggerFromContext(ctx) == nil {
		ctx = ctxlog.WithLogger(ctx, slog.Default())
	}
	return loader.Load(ctx, paths, loader.Options{
		Parser:   parser,
		Validate: opts.Validate,
		Settings: opts.Settings,
	})
}
