package settings

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclSettingsFile is the decoding target for an optional settings file.
// Both fields are optional; Default() values are used for anything absent.
type hclSettingsFile struct {
	MissionTime         *float64 `hcl:"mission-time,optional"`
	ProbabilityAnalysis *bool    `hcl:"probability-analysis,optional"`
}

// LoadHCL reads an HCL settings file at path and returns the Settings it
// describes, defaulting any field the file omits. This is a convenience on
// top of constructing Settings directly in Go; the MEF model itself is
// always XML (spec §6), never HCL — only this small ambient config concern
// uses HCL, mirroring how the teacher project used hashicorp/hcl for its
// own configuration surface.
func LoadHCL(path string) (Settings, error) {
	result := Default()

	src, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return result, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}

	var parsed hclSettingsFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return result, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}

	if parsed.MissionTime != nil {
		result.MissionTime = *parsed.MissionTime
	}
	if parsed.ProbabilityAnalysis != nil {
		result.ProbabilityAnalysis = *parsed.ProbabilityAnalysis
	}
	return result, nil
}
