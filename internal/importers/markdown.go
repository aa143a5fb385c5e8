package importers

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/karimzidan/pmdoc/internal/artifact"
)

var headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Section is one heading-delimited block of a markdown document.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
	Level   int    `json:"level"`
}

// ParseSections splits markdown content into heading-delimited sections.
// Content before the first heading is returned as a section with an empty
// heading.
func ParseSections(content string) []Section {
	lines := strings.Split(content, "\n")
	var sections []Section
	var current *Section

	for _, line := range lines {
		if m := headingRegex.FindStringSubmatch(line); m != nil {
			if current != nil {
				current.Content = strings.TrimSpace(current.Content)
				sections = append(sections, *current)
			}
			current = &Section{
				Heading: m[2],
				Level:   len(m[1]),
			}
			continue
		}
		if current == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			current = &Section{}
		}
		current.Content += line + "\n"
	}

	if current != nil {
		current.Content = strings.TrimSpace(current.Content)
		sections = append(sections, *current)
	}

	return sections
}

// ExtractTitle returns the document title: the first level-1 heading, or the
// first heading of any level, or the filename without extension.
func ExtractTitle(content, filePath string) string {
	sections := ParseSections(content)
	for _, s := range sections {
		if s.Level == 1 && s.Heading != "" {
			return s.Heading
		}
	}
	for _, s := range sections {
		if s.Heading != "" {
			return s.Heading
		}
	}
	base := filepath.Base(filePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return strings.TrimSpace(base)
}

// typeHints maps filename/title substrings to catalog document types. The
// first matching hint wins, so more specific substrings come first.
var typeHints = []struct {
	substr string
	t      artifact.Type
}{
	{"charter", artifact.ProjectCharter},
	{"business-case", artifact.BusinessCase},
	{"business case", artifact.BusinessCase},
	{"scope", artifact.ScopeStatement},
	{"requirement", artifact.Requirements},
	{"stakeholder", artifact.StakeholderRegister},
	{"wbs", artifact.WBS},
	{"work-breakdown", artifact.WBS},
	{"work breakdown", artifact.WBS},
	{"risk", artifact.RiskPlan},
	{"quality", artifact.QualityPlan},
	{"communication", artifact.CommunicationsPlan},
	{"schedule", artifact.SchedulePlan},
	{"cost", artifact.CostPlan},
	{"budget", artifact.CostPlan},
	{"resource", artifact.ResourcePlan},
	{"procurement", artifact.ProcurementPlan},
}

// ClassifyType guesses which catalog document type an imported file
// corresponds to, from its filename and title. Returns false when nothing
// matches; such files are imported as free-form reference material.
func ClassifyType(filePath, title string) (artifact.Type, bool) {
	haystack := strings.ToLower(filepath.Base(filePath) + " " + title)
	for _, h := range typeHints {
		if strings.Contains(haystack, h.substr) {
			return h.t, true
		}
	}
	return "", false
}
