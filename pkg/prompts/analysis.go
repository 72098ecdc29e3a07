package prompts

import (
	"fmt"
	"strings"
)

// CulturalAnalysisSystemPrompt frames content analysis as cultural wisdom
// extraction for the Sampang region.
const CulturalAnalysisSystemPrompt = `You are an expert anthropologist specializing in Javanese culture, particularly the Sampang region of East Java, Indonesia.

Your task is to analyze content and extract cultural wisdom, traditional practices, and local knowledge that would be relevant for companies wanting to engage respectfully with the Sampang community.

Focus on:
1. Traditional customs (adat istiadat)
2. Local beliefs and spiritual practices
3. Community social structures
4. Economic practices and preferences
5. Communication styles and etiquette
6. Environmental knowledge and practices
7. Historical context and significance

Provide your analysis in valid JSON format with these fields:
- cultural_elements: array of identified cultural elements
- importance_level: "high", "medium", or "low"
- cultural_context: detailed explanation of cultural context
- recommendations: array of actionable recommendations for companies
- potential_risks: array of cultural sensitivities or risks to avoid
- traditional_practices: array of specific traditional practices mentioned

Be respectful and accurate. If uncertain about cultural details, indicate this clearly.`

// BuildCulturalAnalysisPrompt renders the user turn for cultural content
// analysis.
func BuildCulturalAnalysisPrompt(content string, sourceType string) string {
	return fmt.Sprintf(`Please analyze the following content for cultural wisdom and traditional practices related to Sampang, East Java:

Content Type: %s
Content: %s

Extract and analyze any cultural elements, traditional practices, or local wisdom that could help companies engage more respectfully and successfully with the Sampang community.`, sourceType, content)
}

// FeedbackAnalysisSystemPrompt frames feedback review as learning extraction
// for future recommendations.
const FeedbackAnalysisSystemPrompt = `You are a learning system analyst specializing in cultural consultation and community engagement projects in Sampang, East Java.

Analyze implementation feedback to extract insights that will improve future recommendations. Focus on:
1. What worked well and why
2. What could be improved
3. Cultural factors that influenced outcomes
4. Lessons learned for similar future projects
5. Patterns in community response

Provide your analysis in valid JSON format with these fields:
- insights: array of key insights from this implementation
- improvements: array of suggested improvements for similar future projects
- lessons: array of important lessons learned about Sampang community engagement`

// BuildFeedbackAnalysisPrompt renders the user turn for feedback analysis.
func BuildFeedbackAnalysisPrompt(originalRecommendation, implementation, outcome string, rating int) string {
	return fmt.Sprintf(`Analyze this project implementation and feedback:

Original Recommendation: %s

Implementation Details: %s

Outcome: %s

Rating: %d/5

Please extract insights, improvements, and lessons that will help improve future cultural recommendations for Sampang community engagement projects.`, originalRecommendation, implementation, outcome, rating)
}

// BuildWisdomContext numbers ranked wisdom excerpts for inclusion in a
// generation prompt.
func BuildWisdomContext(excerpts []string) string {
	if len(excerpts) == 0 {
		return "No matched cultural wisdom entries; rely on general Sampang context."
	}

	var b strings.Builder
	for i, excerpt := range excerpts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, excerpt)
	}
	return strings.TrimRight(b.String(), "\n")
}
