package diagfmt

import (
	"encoding/json"
	"io"

	"modlink/internal/diag"
	"modlink/internal/source"
)

// SarifRunMeta describes the tool that produced a SARIF run.
type SarifRunMeta struct {
	ToolName    string
	ToolVersion string
	InfoURI     string
}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Help *sarifText   `json:"help,omitempty"`
	Conf *sarifConfig `json:"defaultConfiguration,omitempty"`
}

type sarifConfig struct {
	Level string `json:"level"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string                 `json:"ruleId"`
	Level            string                 `json:"level"`
	Message          sarifText              `json:"message"`
	Locations        []sarifLocation        `json:"locations"`
	RelatedLocations []sarifRelatedLocation `json:"relatedLocations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifRelatedLocation struct {
	ID               int           `json:"id"`
	Message          sarifText     `json:"message"`
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
}

func sarifPhys(fs *source.FileSet, sp source.Span) sarifPhysical {
	loc := diag.Locate(fs, sp)
	return sarifPhysical{
		ArtifactLocation: sarifArtifact{URI: loc.ModulePath},
		Region: sarifRegion{
			StartLine:   loc.Line,
			StartColumn: loc.Column,
			EndLine:     loc.EndLine,
			EndColumn:   loc.EndColumn,
		},
	}
}

var sarifKinds = []diag.Kind{
	diag.ImmutableViolation,
	diag.InterfaceViolation,
	diag.NamespaceCollision,
	diag.StructureException,
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0).
// Prev и заметки уходят в relatedLocations.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	rules := make([]sarifRule, 0, len(sarifKinds))
	for _, k := range sarifKinds {
		rules = append(rules, sarifRule{ID: k.ID(), Name: k.String(), Conf: &sarifConfig{Level: "error"}})
	}
	results := make([]sarifResult, 0, bag.Len())
	for _, d := range bag.Items() {
		msg := d.Message
		if d.Hint != "" {
			msg += "\nhint: " + d.Hint
		}
		res := sarifResult{
			RuleID:  d.Kind.ID(),
			Level:   "error",
			Message: sarifText{Text: msg},
		}
		for _, sp := range d.Annotations {
			res.Locations = append(res.Locations, sarifLocation{PhysicalLocation: sarifPhys(fs, sp)})
		}
		id := 0
		if d.Prev != nil {
			res.RelatedLocations = append(res.RelatedLocations, sarifRelatedLocation{
				ID:               id,
				Message:          sarifText{Text: "previous declaration"},
				PhysicalLocation: sarifPhys(fs, *d.Prev),
			})
			id++
		}
		for _, n := range d.Notes {
			res.RelatedLocations = append(res.RelatedLocations, sarifRelatedLocation{
				ID:               id,
				Message:          sarifText{Text: n.Msg},
				PhysicalLocation: sarifPhys(fs, n.Span),
			})
			id++
		}
		results = append(results, res)
	}
	log := sarifLog{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           meta.ToolName,
				Version:        meta.ToolVersion,
				InformationURI: meta.InfoURI,
				Rules:          rules,
			}},
			Results: results,
		}},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}
