package service

import "strings"

// ComposePrompt merges retrieved context and the user message into a grounded
// instruction. Empty or degraded context yields the user message unchanged.
// The delimiter lines are part of the wire contract with the model prompts
// and must not change.
func ComposePrompt(context, userMessage, topic string) string {
	if context == "" || context == "No results found." || strings.HasPrefix(context, "Error") {
		return userMessage
	}

	var b strings.Builder
	b.WriteString("### HSE INFORMATION ON ")
	b.WriteString(strings.ToUpper(topic))
	b.WriteString(" ###\n\n")
	b.WriteString(context)
	b.WriteString("\n\n### END OF HSE INFORMATION ###\n\n")
	b.WriteString("Using ONLY the HSE information provided above, please answer the following query: ")
	b.WriteString(userMessage)
	return b.String()
}
