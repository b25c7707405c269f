package prompts

import (
	"fmt"
	"strings"

	"github.com/mariostorable/friction-engine/pkg/models"
)

// classifiableThemes lists the theme keys the model may choose from.
var classifiableThemes = []string{
	models.ThemeBillingConfusion,
	models.ThemeIntegrationFailure,
	models.ThemeProductGap,
	models.ThemeOnboardingStruggle,
	models.ThemePerformance,
	models.ThemeSupportExperience,
	models.ThemeDataQuality,
	models.ThemeOther,
}

// BuildFrictionClassificationSystemMessage returns the system message for
// friction classification.
func BuildFrictionClassificationSystemMessage() string {
	return "You are a customer-success analyst. You read one support record and " +
		"judge whether it represents genuine operational friction (a customer " +
		"struggling with the product or the company) or ordinary support traffic " +
		"(how-to questions, routine requests). Respond with a single JSON object " +
		"and nothing else."
}

// BuildFrictionClassificationPrompt creates the prompt for classifying one
// support record. The response format asks for exactly the keys the parser
// consumes.
func BuildFrictionClassificationPrompt(text string) string {
	var prompt strings.Builder

	prompt.WriteString("# Support Record\n\n")
	prompt.WriteString(text)
	prompt.WriteString("\n\n# Task\n\n")
	prompt.WriteString("Classify this record. Respond with one JSON object:\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"summary\": \"one sentence describing the customer's problem\",\n")
	prompt.WriteString(fmt.Sprintf("  \"theme_key\": \"one of: %s\",\n", strings.Join(classifiableThemes, ", ")))
	prompt.WriteString("  \"severity\": \"integer 1-5, where 1 is trivial and 5 is business-threatening\",\n")
	prompt.WriteString("  \"sentiment\": \"negative, neutral, or positive\",\n")
	prompt.WriteString("  \"root_cause\": \"short phrase naming the underlying cause\",\n")
	prompt.WriteString("  \"is_friction\": \"true if genuine friction, false for ordinary support\",\n")
	prompt.WriteString("  \"confidence\": \"0.0-1.0\"\n")
	prompt.WriteString("}\n")

	return prompt.String()
}
