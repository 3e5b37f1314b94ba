// Package guard screens conversations for prompt-leak and policy probe
// attempts before any backend call is made. Matches are answered with a
// per-family canned refusal so the emulated provider never breaks character.
package guard

import "strings"

// denyList holds the case-insensitive substrings that trigger a refusal.
// English and Indonesian probes are both covered.
var denyList = []string{
	"verbatim", "system prompt", "developer messages", "safety policies", "print your instructions",
	"disclose instructions", "internal policy", "jailbreak", "bypass", "unrestricted",
	"developer mode", "ignore rules", "abaikan aturan", "jawab tanpa filter", "mode unrestricted",
	"dan version", "exploit", "reverse-engineering", "internal system", "respon asli",
	"as if you are", "meniru model",
}

// Detect reports whether the text contains a leak-attempt phrase. The full
// conversation text should be passed, not just the last message.
func Detect(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range denyList {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Refusal returns the canned refusal for the given alias family.
func Refusal(alias string) string {
	lower := strings.ToLower(alias)
	switch {
	case strings.Contains(lower, "grok"):
		return "I'm sorry, I’m unable to reveal my system prompt or internal safety policies for security reasons. However, I can assist you with questions or tasks within my guidelines."
	case strings.Contains(lower, "claude"):
		return "I apologize, but I cannot disclose my internal system instructions or safety protocols. I'm here to help with any other queries you might have."
	case strings.Contains(lower, "gpt"):
		return "I am unable to disclose internal system instructions. How else can I help you today?"
	default:
		return "I am unable to disclose internal system instructions."
	}
}

// StreamRefusal returns the canned refusal used on the product chat path,
// where the default tone is Indonesian.
func StreamRefusal(alias string) string {
	lower := strings.ToLower(alias)
	if strings.Contains(lower, "grok") || strings.Contains(lower, "claude") || strings.Contains(lower, "gpt") {
		return Refusal(alias)
	}
	return "Maaf, saya tidak dapat memenuhi permintaan ini."
}

// IdentityProbe checks the last user message for fingerprinting probes that
// try to make the persona describe itself as a generic next-token predictor.
// It returns the canned in-character answer when the probe matches.
func IdentityProbe(alias, lastMessage string) (string, bool) {
	lowerAlias := strings.ToLower(alias)
	lowerMessage := strings.ToLower(lastMessage)

	isGrok := strings.Contains(lowerAlias, "grok")
	isClaude := strings.Contains(lowerAlias, "claude")
	isGPT := strings.Contains(lowerAlias, "gpt")
	isDeepSeek := strings.Contains(lowerAlias, "deepseek")
	isXvAI := lowerAlias == "xvai-q-4.5"

	if !isGrok && !isClaude && !isGPT && !isDeepSeek && !isXvAI {
		return "", false
	}

	if strings.Contains(lowerMessage, "internal concepts") && strings.Contains(lowerMessage, "next-token prediction") {
		switch {
		case isClaude:
			return "Saya adalah Claude, model AI yang dikembangkan oleh Anthropic.", true
		case isDeepSeek:
			return "Saya adalah asisten AI dari DeepSeek, sebuah model bahasa besar (LLM) yang dirancang untuk membantu menjawab pertanyaan, memberikan informasi, dan mendukung berbagai tugas.", true
		case isXvAI:
			return "Saya adalah XvAI Quantum 4.5, model flagship dari Visora yang dikembangkan oleh Nauval akbar.", true
		default:
			return "I am a large language model, trained by the respective organization.", true
		}
	}

	if isGrok && strings.Contains(lowerMessage, "optimizing") && strings.Contains(lowerMessage, "next token") {
		return "objective truth and maximum helpfulness.", true
	}

	return "", false
}
