package llm

// TaskType identifies which engine operation a completion call serves.
// Model, token limit and temperature are selected per task.
type TaskType string

const (
	TaskCulturalAnalysis         TaskType = "cultural_analysis"
	TaskRecommendationGeneration TaskType = "recommendation_generation"
	TaskContentExtraction        TaskType = "content_extraction"
	TaskFeedbackAnalysis         TaskType = "feedback_analysis"
)

// TaskSettings holds the completion parameters for one task type.
type TaskSettings struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// defaultTaskTable is the built-in per-task configuration. Precise tasks run
// cold (content extraction at 0.1), strategy generation runs warm (0.7).
var defaultTaskTable = map[TaskType]TaskSettings{
	TaskCulturalAnalysis:         {Model: "anthropic/claude-3-sonnet", MaxTokens: 2000, Temperature: 0.3},
	TaskRecommendationGeneration: {Model: "anthropic/claude-3-opus", MaxTokens: 4000, Temperature: 0.7},
	TaskContentExtraction:        {Model: "anthropic/claude-3-haiku", MaxTokens: 1500, Temperature: 0.1},
	TaskFeedbackAnalysis:         {Model: "anthropic/claude-3-sonnet", MaxTokens: 1500, Temperature: 0.5},
}

// TaskTable maps task types to completion settings. Model names can be
// overridden per task at construction; token limits and temperatures are
// fixed engine policy.
type TaskTable struct {
	settings map[TaskType]TaskSettings
}

// NewTaskTable builds a task table from the defaults with optional per-task
// model overrides. Empty override values keep the default model.
func NewTaskTable(modelOverrides map[TaskType]string) *TaskTable {
	settings := make(map[TaskType]TaskSettings, len(defaultTaskTable))
	for task, s := range defaultTaskTable {
		if override, ok := modelOverrides[task]; ok && override != "" {
			s.Model = override
		}
		settings[task] = s
	}
	return &TaskTable{settings: settings}
}

// Settings returns the completion settings for a task. Unknown tasks fall
// back to the feedback-analysis settings (smallest general-purpose budget).
func (t *TaskTable) Settings(task TaskType) TaskSettings {
	if s, ok := t.settings[task]; ok {
		return s
	}
	return t.settings[TaskFeedbackAnalysis]
}
