package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/piwi3910/ductcalc/internal/importer"
	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/project"
)

// errImportFailed is returned when a schedule or drawing had row errors.
var errImportFailed = errors.New("import failed")

// inputOptions controls how loadInput interprets non-project files.
type inputOptions struct {
	dxfScale float64
}

// loadInput reads a saved project or imports a terminal schedule (.csv,
// .xlsx) or a DXF sketch. Imported designs inherit the configured defaults
// and are named after the file.
func loadInput(path string, cfg model.AppConfig, opts inputOptions, logger *log.Logger) (model.Project, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".json") {
		p, err := project.LoadProject(path)
		if err != nil {
			return model.Project{}, err
		}
		logger.Debug("project loaded", "path", path, "terminals", len(p.Terminals), "segments", len(p.Segments))
		return p, nil
	}

	var res importer.ImportResult
	switch filepath.Ext(lower) {
	case ".csv", ".txt":
		res = importer.ImportCSV(path)
	case ".xlsx":
		res = importer.ImportExcel(path)
	case ".dxf":
		dxfOpts := importer.DXFOptions{Scale: opts.dxfScale, InletRadius: cfg.InletRadius}
		if dxfOpts.Scale <= 0 {
			dxfOpts.Scale = 1
		}
		res = importer.ImportDXF(path, dxfOpts)
	default:
		return model.Project{}, fmt.Errorf("unsupported input %q: want %s, .csv, .xlsx or .dxf", path, project.ProjectExt)
	}

	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			logger.Error(e)
		}
		return model.Project{}, fmt.Errorf("%s: %w with %d error(s)", path, errImportFailed, len(res.Errors))
	}

	p := res.Project(projectName(path))
	inletFlow := p.InletFlow
	cfg.ApplyToProject(&p)
	if inletFlow > 0 {
		p.InletFlow = inletFlow
	}
	logger.Debug("imported", "path", path, "terminals", len(p.Terminals), "segments", len(p.Segments))
	return p, nil
}

// projectName derives a design name from a file path.
func projectName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, project.ProjectExt)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolvePolicy picks the sizing policy for a run: the named preset when
// given, otherwise the project's own policy.
func resolvePolicy(presetsPath, presetName string, p model.Project) (model.SizingPolicy, error) {
	if presetName == "" {
		if p.Policy.FrictionRate > 0 {
			return p.Policy, nil
		}
		return model.DefaultPolicy(), nil
	}
	store, err := project.LoadPresets(presetsPath)
	if err != nil {
		return model.SizingPolicy{}, err
	}
	preset := store.FindByName(presetName)
	if preset == nil {
		return model.SizingPolicy{}, fmt.Errorf("unknown preset %q (available: %s)", presetName, strings.Join(store.Names(), ", "))
	}
	return preset.Policy(), nil
}
