// Package shaper renders backend completions into vendor-shaped response
// envelopes. Five families are supported; the family is selected from the
// requested alias, never from the backend that actually produced the text.
package shaper

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// Family identifies a response envelope family.
type Family string

const (
	FamilyOpenAI   Family = "openai"
	FamilyClaude   Family = "claude"
	FamilyDeepSeek Family = "deepseek"
	FamilyXvAI     Family = "xvai"
	FamilyGemini   Family = "gemini"
)

// geminiStyleAliases get the Gemini envelope on the completion endpoint.
var geminiStyleAliases = map[string]struct{}{
	"gemini-3-flash": {},
	"gemini-3-pro":   {},
}

// FamilyFor resolves the envelope family for an alias. Gemini-style aliases
// win first, then claude, deepseek, and xvai substrings; grok and gpt share
// the OpenAI envelope, which is also the default.
func FamilyFor(alias string) Family {
	lower := strings.ToLower(alias)
	if _, ok := geminiStyleAliases[lower]; ok {
		return FamilyGemini
	}
	switch {
	case strings.Contains(lower, "claude"):
		return FamilyClaude
	case strings.Contains(lower, "deepseek"):
		return FamilyDeepSeek
	case lower == "xvai-q-4.5":
		return FamilyXvAI
	default:
		return FamilyOpenAI
	}
}

// IsThinkingAlias reports whether the alias advertises thinking output.
func IsThinkingAlias(alias string) bool {
	lower := strings.ToLower(alias)
	return strings.Contains(lower, "gemini-3") || strings.Contains(lower, "thinking") || strings.Contains(lower, "flash")
}

// Usage carries real token counts from the backend. A nil *Usage means the
// backend reported nothing and counts are synthesized.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// TokenUsage is the OpenAI-style usage block.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// OpenAIMessage is a single chat message in an OpenAI-style envelope.
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIChoice is a completion choice in an OpenAI-style envelope.
type OpenAIChoice struct {
	Index        int           `json:"index"`
	Message      OpenAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// OpenAIResponse is the OpenAI-style completion envelope, used for grok and
// gpt aliases and as the fallback shape.
type OpenAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
	Usage   TokenUsage     `json:"usage"`
}

// TextBlock is a typed text content block shared by the Claude and XvAI
// envelopes.
type TextBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// InOutUsage is the input/output token usage block.
type InOutUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ClaudeResponse is the Anthropic-style message envelope.
type ClaudeResponse struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	Role         string      `json:"role"`
	Model        string      `json:"model"`
	Content      []TextBlock `json:"content"`
	StopReason   string      `json:"stop_reason"`
	StopSequence *string     `json:"stop_sequence"`
	Usage        InOutUsage  `json:"usage"`
}

// DeepSeekOutput is the output block of the DeepSeek envelope.
type DeepSeekOutput struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// DeepSeekUsage is the DeepSeek usage block.
type DeepSeekUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// DeepSeekResponse is the inner DeepSeek response object.
type DeepSeekResponse struct {
	ID     string         `json:"id"`
	Model  string         `json:"model"`
	Output DeepSeekOutput `json:"output"`
	Usage  DeepSeekUsage  `json:"usage"`
}

// DeepSeekEnvelope wraps the DeepSeek response object.
type DeepSeekEnvelope struct {
	Response DeepSeekResponse `json:"response"`
}

// XvAIResponse is the Visora-native message envelope.
type XvAIResponse struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	Role          string      `json:"role"`
	Model         string      `json:"model"`
	AssistantName string      `json:"assistant_name"`
	Content       []TextBlock `json:"content"`
	StopReason    string      `json:"stop_reason"`
	StopSequence  *string     `json:"stop_sequence"`
	Usage         InOutUsage  `json:"usage"`
}

// GeminiPart is a content part in the Gemini envelope.
type GeminiPart struct {
	Text             string `json:"text"`
	ThoughtSignature string `json:"thoughtSignature,omitempty"`
}

// GeminiContent is the content block of a Gemini candidate.
type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
	Role  string       `json:"role"`
}

// GeminiCandidate is a single Gemini candidate.
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
	Index        int           `json:"index"`
}

// GeminiTokenDetail is a per-modality token breakdown entry.
type GeminiTokenDetail struct {
	Modality   string `json:"modality"`
	TokenCount int    `json:"tokenCount"`
}

// GeminiUsageMetadata is the Gemini usage block.
type GeminiUsageMetadata struct {
	PromptTokenCount     int                 `json:"promptTokenCount"`
	CandidatesTokenCount int                 `json:"candidatesTokenCount"`
	TotalTokenCount      int                 `json:"totalTokenCount"`
	PromptTokensDetails  []GeminiTokenDetail `json:"promptTokensDetails"`
	ThoughtsTokenCount   int                 `json:"thoughtsTokenCount,omitempty"`
}

// GeminiResponse is the Gemini generateContent envelope.
type GeminiResponse struct {
	Candidates    []GeminiCandidate   `json:"candidates"`
	UsageMetadata GeminiUsageMetadata `json:"usageMetadata"`
	ModelVersion  string              `json:"modelVersion"`
	ResponseID    string              `json:"responseId"`
}

// Shaper builds vendor envelopes around completion text.
type Shaper struct {
	synth *Synth
	nowFn func() time.Time
}

// New constructs a Shaper. A nil synth gets a time-seeded one, a nil nowFn
// defaults to time.Now.
func New(synth *Synth, nowFn func() time.Time) *Shaper {
	if synth == nil {
		synth = NewSynth(nil)
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Shaper{synth: synth, nowFn: nowFn}
}

// Shape renders text into the envelope family resolved from the alias.
func (s *Shaper) Shape(alias, text string, usage *Usage) any {
	switch FamilyFor(alias) {
	case FamilyGemini:
		return s.Gemini(alias, text, usage)
	case FamilyClaude:
		return s.Claude(alias, text, usage)
	case FamilyDeepSeek:
		return s.DeepSeek(alias, text, usage)
	case FamilyXvAI:
		return s.XvAI(alias, text, usage)
	default:
		return s.OpenAI(alias, text, usage)
	}
}

// OpenAI renders the OpenAI-style envelope.
func (s *Shaper) OpenAI(alias, content string, usage *Usage) OpenAIResponse {
	var tokens TokenUsage
	if usage != nil {
		tokens = TokenUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		}
	} else {
		completion := syntheticCompletionTokens(content)
		tokens = TokenUsage{
			PromptTokens:     100 + s.synth.IntN(50),
			CompletionTokens: completion,
			TotalTokens:      100 + s.synth.IntN(50) + completion,
		}
	}
	return OpenAIResponse{
		ID:      s.synth.OpenAIID(),
		Object:  "chat.completion",
		Created: s.nowFn().Unix(),
		Model:   alias,
		Choices: []OpenAIChoice{{
			Index:        0,
			Message:      OpenAIMessage{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
		Usage: tokens,
	}
}

// Claude renders the Anthropic-style envelope. The claude-opus-4.6 alias
// reports a dated snapshot model name.
func (s *Shaper) Claude(alias, text string, usage *Usage) ClaudeResponse {
	model := alias
	if alias == "claude-opus-4.6" {
		model = "claude-4-6-opus-20260205"
	}
	var tokens InOutUsage
	if usage != nil {
		tokens = InOutUsage{InputTokens: usage.PromptTokens, OutputTokens: usage.CompletionTokens}
	} else {
		tokens = InOutUsage{
			InputTokens:  10 + s.synth.IntN(20),
			OutputTokens: syntheticCompletionTokens(text),
		}
	}
	return ClaudeResponse{
		ID:           s.synth.ClaudeID(),
		Type:         "message",
		Role:         "assistant",
		Model:        model,
		Content:      []TextBlock{{Type: "text", Text: text}},
		StopReason:   "end_turn",
		StopSequence: nil,
		Usage:        tokens,
	}
}

// DeepSeek renders the DeepSeek envelope with language detection.
func (s *Shaper) DeepSeek(alias, text string, usage *Usage) DeepSeekEnvelope {
	var tokens DeepSeekUsage
	if usage != nil {
		tokens = DeepSeekUsage{
			InputTokens:  usage.PromptTokens,
			OutputTokens: usage.CompletionTokens,
			TotalTokens:  usage.TotalTokens,
		}
	} else {
		completion := syntheticCompletionTokens(text)
		tokens = DeepSeekUsage{InputTokens: 12, OutputTokens: completion, TotalTokens: 12 + completion}
	}
	return DeepSeekEnvelope{Response: DeepSeekResponse{
		ID:    fmt.Sprintf("ds-response-%d", s.nowFn().Unix()),
		Model: alias,
		Output: DeepSeekOutput{
			Text:       text,
			Language:   DetectLanguage(text),
			Confidence: 0.89,
		},
		Usage: tokens,
	}}
}

// XvAI renders the Visora-native envelope.
func (s *Shaper) XvAI(alias, text string, usage *Usage) XvAIResponse {
	var tokens InOutUsage
	if usage != nil {
		tokens = InOutUsage{InputTokens: usage.PromptTokens, OutputTokens: usage.CompletionTokens}
	} else {
		tokens = InOutUsage{InputTokens: 331, OutputTokens: syntheticCompletionTokens(text)}
	}
	return XvAIResponse{
		ID:            s.synth.XvAIID(),
		Type:          "message",
		Role:          "assistant",
		Model:         alias,
		AssistantName: "XvAI Quantum 4.5",
		Content:       []TextBlock{{Type: "text", Text: text}},
		StopReason:    "end_turn",
		StopSequence:  nil,
		Usage:         tokens,
	}
}

// Gemini renders the Gemini generateContent envelope. Thinking aliases gain
// a thought signature and a fabricated thoughts token count.
func (s *Shaper) Gemini(alias, text string, usage *Usage) GeminiResponse {
	promptTokens := s.synth.IntN(10) + 5
	completionTokens := syntheticCompletionTokens(text)
	if usage != nil {
		if usage.PromptTokens > 0 {
			promptTokens = usage.PromptTokens
		}
		if usage.CompletionTokens > 0 {
			completionTokens = usage.CompletionTokens
		}
	}

	thinking := IsThinkingAlias(alias)
	thoughtsTokens := 0
	part := GeminiPart{Text: text}
	if thinking {
		thoughtsTokens = s.synth.IntN(400) + 200
		part.ThoughtSignature = s.synth.ThoughtSignature()
	}

	modelVersion := alias
	if !strings.Contains(alias, "-preview") {
		modelVersion = alias + "-preview"
	}

	return GeminiResponse{
		Candidates: []GeminiCandidate{{
			Content:      GeminiContent{Parts: []GeminiPart{part}, Role: "model"},
			FinishReason: "STOP",
			Index:        0,
		}},
		UsageMetadata: GeminiUsageMetadata{
			PromptTokenCount:     promptTokens,
			CandidatesTokenCount: completionTokens,
			TotalTokenCount:      promptTokens + completionTokens + thoughtsTokens,
			PromptTokensDetails:  []GeminiTokenDetail{{Modality: "TEXT", TokenCount: promptTokens}},
			ThoughtsTokenCount:   thoughtsTokens,
		},
		ModelVersion: modelVersion,
		ResponseID:   s.synth.GeminiResponseID(),
	}
}

// EnsureThinkBlock prepends a fabricated think block for deepseek-r1 when
// thinking output was requested but the backend text carries none.
func EnsureThinkBlock(alias string, thinking bool, text, lastUserContent string) string {
	if strings.ToLower(alias) != "deepseek-r1" || !thinking || strings.Contains(text, "<think>") {
		return text
	}
	preview := lastUserContent
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	return "<think>Processing query: \"" + preview + "\". Formulating a precise response.</think>\n" + text
}

// indonesianKeywords are common Indonesian function words used for language
// detection in DeepSeek output metadata.
var indonesianKeywords = []string{
	"adalah", "dan", "yang", "untuk", "saya", "kamu", "dengan", "ini", "itu",
	"dari", "ke", "di", "pada", "tersebut", "bisa", "akan",
}

var indonesianPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(indonesianKeywords))
	for _, kw := range indonesianKeywords {
		out = append(out, regexp.MustCompile(`\b`+kw+`\b`))
	}
	return out
}()

// DetectLanguage returns "id" when the text matches at least one Indonesian
// keyword on a word boundary, "en" otherwise.
func DetectLanguage(text string) string {
	lower := strings.ToLower(text)
	for _, pattern := range indonesianPatterns {
		if pattern.MatchString(lower) {
			return "id"
		}
	}
	return "en"
}

// syntheticCompletionTokens estimates completion tokens from text length.
func syntheticCompletionTokens(text string) int {
	return int(math.Ceil(float64(len(text)) / 4))
}
