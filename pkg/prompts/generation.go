// Package prompts builds the system and user prompts for SQL generation.
package prompts

import (
	"fmt"
	"strings"

	"github.com/querygate/engine/pkg/models"
)

// GenerationSystemPrompt instructs the model to translate a
// natural-language request into a single SQL statement for the given
// schema, or emit the vagueness sentinel when it cannot.
func GenerationSystemPrompt() string {
	var prompt strings.Builder

	prompt.WriteString("You are a SQL generation assistant. ")
	prompt.WriteString("Translate the user's request into exactly one SQL statement against the provided schema.\n\n")
	prompt.WriteString("Rules:\n")
	prompt.WriteString("- Use only tables and columns that appear in the schema.\n")
	prompt.WriteString("- Produce a single statement. Never produce multiple statements separated by semicolons.\n")
	prompt.WriteString("- Never access system catalogs or metadata tables.\n")
	prompt.WriteString("- Return the statement inside a ```sql fenced block with no commentary.\n")
	prompt.WriteString("- If the request is too vague to translate reliably, respond with exactly VAGUE_QUERY instead of SQL.\n")

	return prompt.String()
}

// BuildGenerationPrompt creates the user prompt for generating SQL from
// a request. Retrieved context snippets, when present, give the model
// hints about relevant tables and prior queries.
func BuildGenerationPrompt(request string, schema *models.SchemaDescriptor, contextSnippets []string) string {
	var prompt strings.Builder

	prompt.WriteString("## Database Schema\n\n")
	prompt.WriteString(schema.Text())
	prompt.WriteString("\n")

	if len(contextSnippets) > 0 {
		prompt.WriteString("## Relevant Context\n\n")
		for _, snippet := range contextSnippets {
			prompt.WriteString(fmt.Sprintf("- %s\n", snippet))
		}
		prompt.WriteString("\n")
	}

	prompt.WriteString("## Request\n\n")
	prompt.WriteString(request)
	prompt.WriteString("\n")

	return prompt.String()
}

// BuildRegenerationPrompt creates the prompt for retrying after a failed
// execution. The prior statement and the failure feedback steer the
// model away from repeating the same mistake.
func BuildRegenerationPrompt(request string, schema *models.SchemaDescriptor, attempt *models.RegenerationAttempt) string {
	var prompt strings.Builder

	prompt.WriteString("## Database Schema\n\n")
	prompt.WriteString(schema.Text())
	prompt.WriteString("\n")

	prompt.WriteString("## Request\n\n")
	prompt.WriteString(request)
	prompt.WriteString("\n\n")

	prompt.WriteString("## Previous Attempt\n\n")
	prompt.WriteString("The following statement failed:\n\n")
	prompt.WriteString(fmt.Sprintf("```sql\n%s\n```\n\n", attempt.PriorSQL))
	prompt.WriteString(fmt.Sprintf("Failure: %s\n\n", attempt.FailureFeedback))
	prompt.WriteString("Produce a corrected statement that addresses this failure. ")
	prompt.WriteString("Do not repeat the failing construct.\n")

	return prompt.String()
}
