package models

import "github.com/google/uuid"

// GenerationRequest carries the per-request inputs of a recommendation
// generation call. Custom prompt overrides are validated before use.
type GenerationRequest struct {
	ProjectID         uuid.UUID `json:"project_id"`
	AnalysisType      string    `json:"analysis_type,omitempty"`
	AdditionalContext string    `json:"additional_context,omitempty"`
	PriorityAreas     []string  `json:"priority_areas,omitempty"`
	SpecificConcerns  []string  `json:"specific_concerns,omitempty"`

	CustomSystemInstruction string `json:"custom_system_instruction,omitempty"`
	CustomUserPrompt        string `json:"custom_user_prompt,omitempty"`
}
