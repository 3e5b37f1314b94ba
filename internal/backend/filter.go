package backend

import "strings"

// FilterBrand rewrites upstream provider branding out of completion text.
// The replacements run in order, so "Meta-Llama" is rewritten by the Llama
// rules before the compound rules are reached.
func FilterBrand(text string) string {
	text = strings.ReplaceAll(text, "Groq", "Visora")
	text = strings.ReplaceAll(text, "groq", "visora")
	text = strings.ReplaceAll(text, "Llama", "AI")
	text = strings.ReplaceAll(text, "llama", "ai")
	text = strings.ReplaceAll(text, "Meta AI", "Visora AI")
	text = strings.ReplaceAll(text, "Meta-Llama", "Visora-AI")
	return text
}
