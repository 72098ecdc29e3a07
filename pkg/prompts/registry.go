package prompts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TemplateFile is the on-disk layout of a prompt template override file.
// Version is informational; the engine logs it at load time.
type TemplateFile struct {
	Version           string `yaml:"version"`
	SystemInstruction string `yaml:"system_instruction"`
	UserPrompt        string `yaml:"user_prompt"`
}

// Registry resolves the default templates, optionally replaced by a
// versioned override file loaded at startup.
type Registry struct {
	version           string
	systemInstruction string
	userPrompt        string
}

// NewRegistry returns a registry serving the built-in templates.
func NewRegistry() *Registry {
	return &Registry{
		version:           "builtin",
		systemInstruction: DefaultSystemInstruction,
		userPrompt:        DefaultUserPrompt,
	}
}

// LoadRegistry reads a template override file. Overrides pass the same
// validation as request-level overrides; a user prompt override must keep the
// project details placeholder.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}

	var file TemplateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse template file: %w", err)
	}

	reg := NewRegistry()
	if file.Version != "" {
		reg.version = file.Version
	}

	if file.SystemInstruction != "" {
		if err := ValidateTemplate("system_instruction", file.SystemInstruction); err != nil {
			return nil, err
		}
		reg.systemInstruction = file.SystemInstruction
	}

	if file.UserPrompt != "" {
		if err := ValidateTemplate("user_prompt", file.UserPrompt); err != nil {
			return nil, err
		}
		if !strings.Contains(file.UserPrompt, ProjectDetailsPlaceholder) {
			return nil, fmt.Errorf("user prompt template must contain %s", ProjectDetailsPlaceholder)
		}
		reg.userPrompt = file.UserPrompt
	}

	return reg, nil
}

// Version returns the loaded template version tag.
func (r *Registry) Version() string {
	return r.version
}

// SystemInstruction resolves the system instruction, preferring a request
// override over the registry default.
func (r *Registry) SystemInstruction(override string) string {
	if override != "" {
		return override
	}
	return r.systemInstruction
}

// UserPrompt resolves the user prompt template, fills the project details
// placeholder and appends the analysis-depth suffix.
func (r *Registry) UserPrompt(projectDetails string, override string, analysisType string) string {
	base := r.userPrompt
	if override != "" {
		base = override
	}
	return BuildUserPrompt(projectDetails, base, analysisType)
}
