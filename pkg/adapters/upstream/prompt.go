package upstream

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a copywriter producing placeholder UI text.
const SystemPrompt = "You write short text for user interface mockups. " +
	"Always reply with a JSON array of strings and nothing else."

// BuildPrompt asks for count distinct texts matching description.
func BuildPrompt(description string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d distinct texts for this request: %s\n", count, strings.TrimSpace(description))
	b.WriteString("Each text must be different from the others and fit in a single text layer.\n")
	fmt.Fprintf(&b, "Reply with a JSON array of exactly %d strings.", count)
	return b.String()
}
