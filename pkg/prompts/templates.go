// Package prompts builds and validates the prompt material sent to the
// completion provider.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/duahurufo/exeloka-engine/pkg/models"
)

// DefaultSystemInstruction frames the model as a cultural consultant for
// community engagement in Sampang, East Java.
const DefaultSystemInstruction = `You are a cultural consultant and business strategist specializing in community engagement in Sampang, East Java, Indonesia.

Your expertise includes:
- Madurese cultural values and Islamic practices in Sampang
- Traditional leadership structures and decision-making processes
- Community concerns regarding development projects
- Effective engagement strategies that respect local wisdom
- Risk assessment for cultural sensitivity issues

Key Cultural Context for Sampang:
- Predominantly Madurese Muslim community with strong Islamic traditions
- Influential religious leaders (kyai) who guide community decisions
- Strong emphasis on honor (harga diri) and family/community bonds
- Traditional agricultural and maritime livelihoods
- Respect for ancestral wisdom and customary practices (adat)
- Important cultural events like Islamic holidays and traditional ceremonies

Common Community Concerns:
- Fair compensation and benefit sharing from development projects
- Preservation of religious sites and cultural landmarks
- Impact on traditional livelihoods (farming, fishing)
- Employment opportunities for local community members
- Environmental protection of agricultural and coastal areas
- Respectful treatment of local customs and social structures

Success Factors:
- Early engagement with religious and community leaders
- Transparent communication about project benefits and impacts
- Respect for Islamic practices and cultural sensitivities
- Local employment and economic opportunities
- Environmental stewardship aligned with community values
- Integration of traditional wisdom into modern approaches

Generate comprehensive, culturally-sensitive recommendations that maximize community acceptance while respecting Sampang's rich cultural heritage. Focus on practical strategies that companies can implement to build trust and ensure project success.`

// DefaultUserPrompt is the user-turn template. The {{PROJECT_DETAILS}}
// placeholder is replaced with the formatted project summary.
const DefaultUserPrompt = `Please analyze this project and provide culturally-informed recommendations for successful community engagement in Sampang, East Java:

**Project Details:**
{{PROJECT_DETAILS}}

**Analysis Required:**
1. **Cultural Risk Assessment**: Identify potential cultural sensitivity issues and community concerns
2. **Strategic Approach**: Recommend high-level engagement strategies that align with local values
3. **Detailed Implementation**: Provide specific actions, timeline, and methods for community engagement
4. **Risk Mitigation**: Address potential challenges and provide mitigation strategies
5. **Success Metrics**: Define measurable indicators of successful community engagement
6. **Cultural Considerations**: Highlight key cultural factors that must be respected throughout the project

**Output Format:**
Provide your analysis in a structured format with clear sections for each analysis area. Include practical, actionable recommendations that the company can implement immediately.

Focus on strategies that:
- Respect local Islamic and Madurese cultural values
- Engage appropriate community and religious leaders
- Address economic and environmental concerns
- Build long-term trust and partnership with the community
- Ensure sustainable and mutually beneficial outcomes`

// ProjectDetailsPlaceholder is the named placeholder inside user prompts.
const ProjectDetailsPlaceholder = "{{PROJECT_DETAILS}}"

const quickAnalysisSuffix = "\n\n**Analysis Type**: Quick Analysis - Focus on essential recommendations and immediate actions only."

const enhancedAnalysisSuffix = "\n\n**Analysis Type**: Enhanced Analysis - Provide comprehensive, detailed analysis with multiple scenarios and long-term considerations."

// BuildSystemInstruction returns the custom instruction when present,
// otherwise the default. Callers validate overrides before passing them in.
func BuildSystemInstruction(custom string) string {
	if strings.TrimSpace(custom) != "" {
		return custom
	}
	return DefaultSystemInstruction
}

// BuildUserPrompt fills the project details placeholder and appends the
// analysis-depth suffix for the requested analysis type.
func BuildUserPrompt(projectDetails string, custom string, analysisType string) string {
	base := DefaultUserPrompt
	if strings.TrimSpace(custom) != "" {
		base = custom
	}

	prompt := strings.Replace(base, ProjectDetailsPlaceholder, projectDetails, 1)

	if analysisType == models.AnalysisTypeQuick {
		return prompt + quickAnalysisSuffix
	}
	return prompt + enhancedAnalysisSuffix
}

// FormatProjectDetails renders a project as the prompt-facing summary block.
// Missing optional fields surface as "Not specified" so the model never sees
// empty labels.
func FormatProjectDetails(project *models.Project) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Project Title**: %s\n", project.Title)
	fmt.Fprintf(&b, "**Company**: %s\n", orNotSpecified(project.CompanyName))
	fmt.Fprintf(&b, "**Project Type**: %s\n", orNotSpecified(project.ProjectType))
	fmt.Fprintf(&b, "**Description**: %s\n\n", project.Description)

	location := "Not specified"
	if len(project.LocationDetails) > 0 {
		if encoded, err := json.MarshalIndent(project.LocationDetails, "", "  "); err == nil {
			location = string(encoded)
		}
	}
	fmt.Fprintf(&b, "**Location Details**: %s\n\n", location)

	stakeholders := "Not specified"
	if len(project.Stakeholders) > 0 {
		stakeholders = strings.Join(project.Stakeholders, ", ")
	}
	fmt.Fprintf(&b, "**Stakeholders**: %s\n\n", stakeholders)

	timeline := "Not specified"
	if project.TimelineStart != nil {
		end := "TBD"
		if project.TimelineEnd != nil {
			end = project.TimelineEnd.Format("2006-01-02")
		}
		timeline = fmt.Sprintf("%s to %s", project.TimelineStart.Format("2006-01-02"), end)
	}
	fmt.Fprintf(&b, "**Timeline**: %s\n\n", timeline)

	fmt.Fprintf(&b, "**Budget Range**: %s\n\n", orNotSpecified(project.BudgetRange))

	risks := "None specified"
	if len(project.RiskFactors) > 0 {
		risks = strings.Join(project.RiskFactors, ", ")
	}
	fmt.Fprintf(&b, "**Known Risk Factors**: %s", risks)

	return b.String()
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
