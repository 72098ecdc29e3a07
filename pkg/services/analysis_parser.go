package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/duahurufo/exeloka-engine/pkg/jsonutil"
	"github.com/duahurufo/exeloka-engine/pkg/llm"
	"github.com/duahurufo/exeloka-engine/pkg/models"
)

const maxListItems = 10

// fallbackConfidence is assigned when the model answered in prose and the
// section extractor had to structure it.
const fallbackConfidence = 0.8

var defaultStrategicApproach = []string{
	"Engage community leaders",
	"Build trust through transparency",
	"Respect cultural values",
}

var defaultSuccessMetrics = []string{
	"Community acceptance rate",
	"Stakeholder satisfaction",
	"Cultural compliance",
}

var defaultCulturalConsiderations = []string{
	"Respect local customs",
	"Engage religious leaders",
	"Consider Islamic practices",
}

const defaultTimeline = "Detailed timeline planning recommended based on community feedback"

// listPrefixPattern strips bullet markers and list numbering from the front of
// a line.
var listPrefixPattern = regexp.MustCompile(`^[-*•\d+.)\s]+`)

// sectionPattern matches one section heading and its body. The terminator is
// a bold marker or a capitalized heading line; matching is case-insensitive
// on the section name only.
func sectionPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|\n)\*{0,2}(?i:` + regexp.QuoteMeta(name) + `)\*{0,2}:?[ \t]*(?s:(.*?))(?:\n\*\*|\n[A-Z]|\z)`)
}

// extractSection returns the body of the first matching section heading, or
// the empty string.
func extractSection(content string, names ...string) string {
	for _, name := range names {
		if match := sectionPattern(name).FindStringSubmatch(content); match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

// extractListSection parses a section body into list items, stripping bullet
// and numbering prefixes, capped at maxListItems.
func extractListSection(content string, names ...string) []string {
	section := extractSection(content, names...)
	if section == "" {
		return nil
	}

	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(listPrefixPattern.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}
		items = append(items, line)
		if len(items) == maxListItems {
			break
		}
	}
	return items
}

// parseRecommendationAnalysis structures a model response. Valid JSON is
// decoded directly; JSON with mistyped scalars (quoted numbers, a bare string
// where a list belongs) is coerced field by field; prose responses go through
// the section extractor with per-field defaults. Required fields are
// synthesized last so the result is always usable.
func parseRecommendationAnalysis(content string) *models.RecommendationAnalysis {
	analysis, err := llm.ParseJSONResponse[models.RecommendationAnalysis](content)
	if err != nil {
		if coerced, ok := coerceAnalysisJSON(content); ok {
			analysis = coerced
		} else {
			analysis = parseUnstructuredAnalysis(content)
		}
	}

	synthesizeRequiredFields(&analysis, content)
	return &analysis
}

// looseAnalysis mirrors RecommendationAnalysis with raw fields so mistyped
// values can be coerced instead of failing the whole decode.
type looseAnalysis struct {
	ExecutiveSummary        json.RawMessage `json:"executive_summary"`
	StrategicApproach       json.RawMessage `json:"strategic_approach"`
	DetailedMethods         json.RawMessage `json:"detailed_methods"`
	RiskMitigation          json.RawMessage `json:"risk_mitigation"`
	TimelineRecommendations json.RawMessage `json:"timeline_recommendations"`
	SuccessMetrics          json.RawMessage `json:"success_metrics"`
	CulturalConsiderations  json.RawMessage `json:"cultural_considerations"`
	ConfidenceScore         json.RawMessage `json:"confidence_score"`
}

// coerceAnalysisJSON salvages a JSON response the strict decoder rejected.
func coerceAnalysisJSON(content string) (models.RecommendationAnalysis, bool) {
	jsonStr, err := llm.ExtractJSON(content)
	if err != nil {
		return models.RecommendationAnalysis{}, false
	}

	var loose looseAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &loose); err != nil {
		return models.RecommendationAnalysis{}, false
	}

	return models.RecommendationAnalysis{
		ExecutiveSummary:        jsonutil.String(loose.ExecutiveSummary),
		StrategicApproach:       jsonutil.StringList(loose.StrategicApproach),
		DetailedMethods:         jsonutil.StringList(loose.DetailedMethods),
		RiskMitigation:          jsonutil.StringList(loose.RiskMitigation),
		TimelineRecommendations: jsonutil.String(loose.TimelineRecommendations),
		SuccessMetrics:          jsonutil.StringList(loose.SuccessMetrics),
		CulturalConsiderations:  jsonutil.StringList(loose.CulturalConsiderations),
		ConfidenceScore:         jsonutil.Float(loose.ConfidenceScore),
	}, true
}

// parseUnstructuredAnalysis structures a prose response section by section.
func parseUnstructuredAnalysis(content string) models.RecommendationAnalysis {
	confidence := fallbackConfidence

	analysis := models.RecommendationAnalysis{
		ExecutiveSummary:        extractSection(content, "executive summary", "summary"),
		StrategicApproach:       extractListSection(content, "strategic approach", "strategy", "recommendations"),
		DetailedMethods:         extractListSection(content, "detailed methods", "implementation", "methods"),
		RiskMitigation:          extractListSection(content, "risk mitigation", "risks"),
		TimelineRecommendations: extractSection(content, "timeline"),
		SuccessMetrics:          extractListSection(content, "success metrics", "metrics"),
		CulturalConsiderations:  extractListSection(content, "cultural considerations", "cultural"),
		ConfidenceScore:         &confidence,
		FieldsDefaulted:         true,
	}

	if analysis.TimelineRecommendations == "" {
		analysis.TimelineRecommendations = defaultTimeline
	}
	if len(analysis.SuccessMetrics) == 0 {
		analysis.SuccessMetrics = append([]string(nil), defaultSuccessMetrics...)
	}
	if len(analysis.CulturalConsiderations) == 0 {
		analysis.CulturalConsiderations = append([]string(nil), defaultCulturalConsiderations...)
	}

	return analysis
}

// synthesizeRequiredFields fills the two required fields from the raw
// response when the parse left them empty.
func synthesizeRequiredFields(analysis *models.RecommendationAnalysis, content string) {
	if analysis.ExecutiveSummary == "" {
		if summary := extractSection(content, "executive summary", "summary"); summary != "" {
			analysis.ExecutiveSummary = summary
		} else {
			analysis.ExecutiveSummary = truncateSummary(content)
		}
		analysis.FieldsDefaulted = true
	}

	if len(analysis.StrategicApproach) == 0 {
		if approach := extractListSection(content, "strategic approach", "strategy"); len(approach) > 0 {
			analysis.StrategicApproach = approach
		} else {
			analysis.StrategicApproach = append([]string(nil), defaultStrategicApproach...)
		}
		analysis.FieldsDefaulted = true
	}
}

func truncateSummary(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= 300 {
		return content
	}
	return content[:300] + "..."
}

// culturalContentKeywords drive the degraded (no provider) cultural content
// analysis.
var culturalContentKeywords = []string{
	"adat", "tradisi", "budaya", "sampang", "madura", "jawa", "islam", "pesantren",
	"kyai", "traditional", "culture", "community", "religious", "customs", "practices",
}

var sentenceSplitPattern = regexp.MustCompile(`[.!?]+`)

// analyzeCulturalContentHeuristic produces a cultural analysis without a
// provider call. Matching sentences become cultural elements; importance is
// estimated from match count and content length.
func analyzeCulturalContentHeuristic(content, sourceType string) *models.CulturalAnalysis {
	lowerContent := strings.ToLower(content)
	sentences := sentenceSplitPattern.Split(content, -1)

	var elements []string
	for _, keyword := range culturalContentKeywords {
		if !strings.Contains(lowerContent, keyword) {
			continue
		}
		matched := 0
		for _, sentence := range sentences {
			sentence = strings.TrimSpace(sentence)
			if len(sentence) <= 20 || !strings.Contains(strings.ToLower(sentence), keyword) {
				continue
			}
			elements = append(elements, sentence)
			matched++
			if matched == 2 {
				break
			}
		}
	}

	importance := "medium"
	switch {
	case len(elements) > 3 || len(content) > 1000:
		importance = "high"
	case len(elements) < 2 || len(content) < 300:
		importance = "low"
	}

	if len(elements) == 0 {
		elements = []string{
			fmt.Sprintf("Content from %s may contain cultural information relevant to Sampang community engagement", sourceType),
		}
	}

	var practices []string
	for _, element := range elements {
		lower := strings.ToLower(element)
		if strings.Contains(lower, "traditional") || strings.Contains(lower, "adat") || strings.Contains(lower, "tradisi") {
			practices = append(practices, element)
		}
	}

	return &models.CulturalAnalysis{
		CulturalElements: elements,
		ImportanceLevel:  importance,
		CulturalContext:  fmt.Sprintf("This content (%s) has been analyzed using basic processing. Enhanced analysis with AI would provide deeper cultural insights.", sourceType),
		Recommendations: []string{
			"Engage with local community leaders before implementation",
			"Respect Islamic values and customs in Sampang",
			"Consider traditional Madurese cultural practices",
			"Ensure transparent communication with stakeholders",
		},
		PotentialRisks: []string{
			"Misunderstanding of local customs",
			"Insufficient community consultation",
			"Cultural sensitivity concerns",
		},
		TraditionalPractices: practices,
		Degraded:             true,
	}
}
