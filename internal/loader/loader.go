// Package loader implements the top-level orchestration of spec §2 and
// §6: pre-flight checks, per-file schema validation/parse/top-level
// element dispatch, the deferred resolution pass, and final validation
// and setup. Grounded on the teacher's cmd/cli/main.go → internal/app
// thin-orchestration shape and internal/builder.BuildStatic's
// register-then-link-then-validate sequencing, adapted to MEF's file-set
// and entity-kind dispatch instead of a single HCL grid.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openpsa-mef/loader/internal/ccf"
	"github.com/openpsa-mef/loader/internal/ctxlog"
	"github.com/openpsa-mef/loader/internal/eventtreebuild"
	"github.com/openpsa-mef/loader/internal/exprfactory"
	"github.com/openpsa-mef/loader/internal/formula"
	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/openpsa-mef/loader/internal/registrar"
	"github.com/openpsa-mef/loader/internal/resolver"
	"github.com/openpsa-mef/loader/internal/settings"
	"github.com/openpsa-mef/loader/internal/containerwalker"
	"github.com/openpsa-mef/loader/internal/validator"
	"github.com/openpsa-mef/loader/internal/xmlio"
)

// Options configures a Load call: the parser/validator collaborators
// from §6 and the caller's Settings.
type Options struct {
	Parser   xmlio.Parser
	Validate xmlio.SchemaValidator // nil means xmlio.NoopValidator{}
	Settings settings.Settings
}

// Load reads, registers, resolves, and validates the MEF model
// described by paths, returning the fully populated Model (spec §2,
// §6). ctx only carries the logger; loading itself never suspends
// (spec §5).
func Load(ctx context.Context, paths []string, opts Options) (*model.Model, error) {
	log := ctxlog.FromContext(ctx)

	canonical, err := preflight(paths)
	if err != nil {
		return nil, err
	}

	mdl := model.New(opts.Settings.MissionTime)

	validate := opts.Validate
	if validate == nil {
		validate = xmlio.NoopValidator{}
	}

	reg := registrar.NewRegistrar(mdl)
	walker := containerwalker.NewWalker(reg)
	exprs := exprfactory.NewFactory(mdl)
	formulas := formula.NewBuilder(mdl)
	trees := eventtreebuild.NewBuilder(mdl, reg, func(n xmlio.Node) (model.Expression, error) {
		return exprs.Build(n, "")
	})
	ccfs := ccf.NewProcessor(exprs.Build)

	for i, path := range paths {
		log.DebugContext(ctx, "loading file", slog.String("path", path), slog.Int("index", i))

		doc, err := opts.Parser.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", merr.ErrIO, err)
		}
		if err := validate.Validate(doc); err != nil {
			return nil, merr.WithFile(doc.Path(), err)
		}

		root := doc.Root()
		if root.Name() != "opsa-mef" {
			return nil, merr.WithFile(doc.Path(), merr.AtLine(root.Line(),
				fmt.Errorf("%w: root element must be 'opsa-mef', got '%s'", merr.ErrValidation, root.Name())))
		}

		reg.SetFile(canonical[path])

		if err := processFile(root, mdl, reg, walker, trees); err != nil {
			return nil, merr.WithFile(doc.Path(), err)
		}
	}

	log.InfoContext(ctx, "registration complete, resolving deferred entities", slog.Int("pending", len(reg.Pending)))

	res := resolver.New(mdl, exprs, formulas, ccfs, trees)
	if err := res.Resolve(reg.Pending); err != nil {
		return nil, err
	}

	v := validator.New(mdl, opts.Settings.ProbabilityAnalysis)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := v.SetupForAnalysis(); err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "model loaded", slog.Int("gates", len(mdl.Gates())), slog.Int("basic_events", len(mdl.BasicEvents())))
	return mdl, nil
}

// processFile dispatches a file's top-level elements in the declared
// order: define-event-tree, define-fault-tree, define-CCF-group,
// model-data (spec §6).
func processFile(root xmlio.Node, mdl *model.Model, reg *registrar.Registrar, walker *containerwalker.Walker, trees *eventtreebuild.Builder) error {
	for _, tag := range []string{"define-event-tree", "define-fault-tree", "define-CCF-group", "model-data"} {
		for _, child := range root.Children() {
			if child.Name() != tag {
				continue
			}
			switch tag {
			case "define-event-tree":
				if _, err := trees.RegisterEventTree(child); err != nil {
					return err
				}
			case "define-fault-tree":
				ft, err := walker.WalkFaultTree(child)
				if err != nil {
					return err
				}
				if err := mdl.AddFaultTree(ft); err != nil {
					return merr.AtLine(child.Line(), err)
				}
			case "define-CCF-group":
				if _, err := reg.RegisterCcfGroup(child, "", model.RolePublic, nil); err != nil {
					return err
				}
			case "model-data":
				if err := processModelData(child, reg); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// processModelData registers a model-data block's global house
// events, basic events, and parameters (spec §6).
func processModelData(node xmlio.Node, reg *registrar.Registrar) error {
	for _, child := range node.Children() {
		var err error
		switch child.Name() {
		case "define-house-event":
			_, err = reg.RegisterHouseEvent(child, "", model.RolePublic)
		case "define-basic-event":
			_, err = reg.RegisterBasicEvent(child, "", model.RolePublic)
		case "define-parameter":
			_, err = reg.RegisterParameter(child, "", model.RolePublic)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// preflight checks every path exists and detects canonicalized
// duplicates (spec §6).
func preflight(paths []string) (map[string]string, error) {
	canonical := make(map[string]string, len(paths))
	byCanonical := make(map[string][]string)

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: File doesn't exist: %s", merr.ErrIO, p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", merr.ErrIO, err)
		}
		canon := filepath.Clean(abs)
		canonical[p] = canon
		byCanonical[canon] = append(byCanonical[canon], p)
	}

	for canon, original := range byCanonical {
		if len(original) > 1 {
			return nil, &DuplicateArgumentError{Canonical: canon, Paths: original}
		}
	}

	return canonical, nil
}

// DuplicateArgumentError reports two or more input paths resolving to
// the same canonical path (spec §6, §7).
type DuplicateArgumentError struct {
	Canonical string
	Paths     []string
}

func (e *DuplicateArgumentError) Error() string {
	return fmt.Sprintf("%v: duplicate input paths %v resolve to the same file '%s'", merr.ErrDuplicateArgument, e.Paths, e.Canonical)
}

func (e *DuplicateArgumentError) Unwrap() error { return merr.ErrDuplicateArgument }
