package prompts

import (
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/duahurufo/exeloka-engine/pkg/apperrors"
)

// MaxTemplateLength bounds user-supplied prompt overrides.
const MaxTemplateLength = 4000

// injectionSignatures are the fixed prompt-injection patterns a template
// override must not match.
var injectionSignatures = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore.*previous.*instruction`),
	regexp.MustCompile(`(?i)system.*prompt.*injection`),
	regexp.MustCompile(`(?i)jailbreak`),
	regexp.MustCompile(`(?i)<script.*>`),
	regexp.MustCompile(`(?i)javascript:`),
}

// ValidateTemplate checks a user-supplied prompt override: non-empty, within
// the length bound, and free of injection signatures. Markup and SQL payload
// scanning catches attempts to smuggle executable content through a prompt
// into downstream renderers. Returns a ValidationError describing the first
// failure.
func ValidateTemplate(field string, template string) error {
	if strings.TrimSpace(template) == "" {
		return apperrors.NewValidationError(field, "prompt template cannot be empty")
	}

	if len(template) > MaxTemplateLength {
		return apperrors.NewValidationError(field, "prompt template is too long (maximum 4000 characters)")
	}

	for _, pattern := range injectionSignatures {
		if pattern.MatchString(template) {
			return apperrors.NewValidationError(field, "prompt template contains potentially unsafe content")
		}
	}

	if isXSS := libinjection.IsXSS(template); isXSS {
		return apperrors.NewValidationError(field, "prompt template contains potentially unsafe content")
	}
	if isSQLi, _ := libinjection.IsSQLi(template); isSQLi {
		return apperrors.NewValidationError(field, "prompt template contains potentially unsafe content")
	}

	return nil
}

// ValidateOverrides validates the optional system instruction and user
// prompt overrides from a generation request. Empty overrides are fine; the
// defaults apply.
func ValidateOverrides(systemInstruction, userPrompt string) error {
	if systemInstruction != "" {
		if err := ValidateTemplate("system_instruction", systemInstruction); err != nil {
			return err
		}
	}
	if userPrompt != "" {
		if err := ValidateTemplate("user_prompt", userPrompt); err != nil {
			return err
		}
	}
	return nil
}
