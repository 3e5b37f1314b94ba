// Package catalog holds the static model catalog exposed on the vendor API.
// The entries are presentational: every alias resolves to the same inference
// backend, but the catalog advertises per-model capability metadata.
package catalog

// Model describes a catalog entry with its advertised capabilities.
type Model struct {
	Name                       string   `json:"name"`
	Version                    string   `json:"version"`
	DisplayName                string   `json:"displayName"`
	Description                string   `json:"description"`
	InputTokenLimit            int      `json:"inputTokenLimit"`
	OutputTokenLimit           int      `json:"outputTokenLimit"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	Temperature                float64  `json:"temperature"`
	TopP                       float64  `json:"topP"`
	TopK                       int      `json:"topK"`
	MaxTemperature             float64  `json:"maxTemperature"`
	Thinking                   bool     `json:"thinking"`
}

// models is the full catalog in display order.
var models = []Model{
	{
		Name:                       "grok-4-heavy",
		Version:                    "001",
		DisplayName:                "Grok 4 Heavy",
		Description:                "Very cheap model made by xAI. High-performance reasoning at low cost, supports massive context for complex tasks, released in early 2026.",
		InputTokenLimit:            1048576,
		OutputTokenLimit:           65536,
		SupportedGenerationMethods: []string{"generateContent", "countTokens", "createCachedContent", "batchGenerateContent"},
		Temperature:                1,
		TopP:                       0.95,
		TopK:                       64,
		MaxTemperature:             2,
		Thinking:                   true,
	},
	{
		Name:                       "grok-2",
		Version:                    "1.0",
		DisplayName:                "Grok 2",
		Description:                "Advanced language model by xAI with balanced speed and performance.",
		InputTokenLimit:            131072,
		OutputTokenLimit:           4096,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                0.7,
		TopP:                       0.9,
		TopK:                       40,
		MaxTemperature:             1.5,
	},
	{
		Name:                       "grok-3",
		Version:                    "1.0",
		DisplayName:                "Grok 3",
		Description:                "Next-generation model from xAI with improved reasoning and knowledge.",
		InputTokenLimit:            262144,
		OutputTokenLimit:           8192,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                0.8,
		TopP:                       0.95,
		TopK:                       50,
		MaxTemperature:             1.8,
		Thinking:                   true,
	},
	{
		Name:                       "grok-4",
		Version:                    "1.0",
		DisplayName:                "Grok 4",
		Description:                "State-of-the-art model from xAI, pushing the boundaries of AI capabilities.",
		InputTokenLimit:            524288,
		OutputTokenLimit:           16384,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                0.9,
		TopP:                       0.95,
		TopK:                       60,
		MaxTemperature:             2,
		Thinking:                   true,
	},
	{
		Name:                       "gpt-5.2",
		Version:                    "001",
		DisplayName:                "GPT 5.2",
		Description:                "OpenAI's most advanced model with unprecedented intelligence and versatility.",
		InputTokenLimit:            1048576,
		OutputTokenLimit:           32768,
		SupportedGenerationMethods: []string{"generateContent", "countTokens"},
		Temperature:                1,
		TopP:                       0.95,
		TopK:                       64,
		MaxTemperature:             2,
		Thinking:                   true,
	},
	{
		Name:                       "gpt-4o",
		Version:                    "latest",
		DisplayName:                "GPT 4o",
		Description:                "OpenAI's high-speed multimodal model optimized for real-time applications.",
		InputTokenLimit:            128000,
		OutputTokenLimit:           4096,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                0.7,
		TopP:                       1,
		TopK:                       1,
		MaxTemperature:             2,
	},
	{
		Name:                       "gemini-3-flash",
		Version:                    "001",
		DisplayName:                "Gemini 3 Flash",
		Description:                "Google's fastest model with high efficiency and large context window.",
		InputTokenLimit:            1048576,
		OutputTokenLimit:           8192,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                1,
		TopP:                       0.95,
		TopK:                       64,
		MaxTemperature:             2,
	},
	{
		Name:                       "gemini-3-pro",
		Version:                    "001",
		DisplayName:                "Gemini 3 Pro",
		Description:                "Google's most capable model for complex reasoning and multimodal tasks.",
		InputTokenLimit:            2097152,
		OutputTokenLimit:           32768,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                1,
		TopP:                       0.95,
		TopK:                       64,
		MaxTemperature:             2,
		Thinking:                   true,
	},
	{
		Name:                       "claude-4.5-opus",
		Version:                    "1.0",
		DisplayName:                "Claude 4.5 Opus",
		Description:                "Anthropic's most powerful model for highly complex tasks and nuance.",
		InputTokenLimit:            200000,
		OutputTokenLimit:           4096,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                1,
		TopP:                       0.95,
		TopK:                       64,
		MaxTemperature:             2,
		Thinking:                   true,
	},
	{
		Name:                       "claude-4.5-sonnet",
		Version:                    "1.0",
		DisplayName:                "Claude 4.5 Sonnet",
		Description:                "Anthropic's balanced model providing high intelligence and speed.",
		InputTokenLimit:            200000,
		OutputTokenLimit:           4096,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                1,
		TopP:                       0.95,
		TopK:                       64,
		MaxTemperature:             2,
	},
	{
		Name:                       "claude-opus-4.6",
		Version:                    "1.0",
		DisplayName:                "Claude Opus 4.6",
		Description:                "Next-gen Claude Opus model with upgraded reasoning and accuracy.",
		InputTokenLimit:            200000,
		OutputTokenLimit:           4096,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                1,
		TopP:                       0.95,
		TopK:                       64,
		MaxTemperature:             2,
		Thinking:                   true,
	},
	{
		Name:                       "claude-3.5-sonnet",
		Version:                    "latest",
		DisplayName:                "Claude 3.5 Sonnet",
		Description:                "Highly capable model from Anthropic, optimized for performance and cost.",
		InputTokenLimit:            200000,
		OutputTokenLimit:           8192,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                0.7,
		TopP:                       1,
		TopK:                       1,
		MaxTemperature:             2,
	},
	{
		Name:                       "xvai-q-4.5",
		Version:                    "4.5",
		DisplayName:                "XvAI Quantum 4.5",
		Description:                "Quantum-enhanced model created by Nauval akbar for superior reasoning.",
		InputTokenLimit:            1048576,
		OutputTokenLimit:           65536,
		SupportedGenerationMethods: []string{"generateContent", "thinking"},
		Temperature:                1,
		TopP:                       0.95,
		TopK:                       64,
		MaxTemperature:             2,
		Thinking:                   true,
	},
	{
		Name:                       "deepseek-r1",
		Version:                    "r1",
		DisplayName:                "DeepSeek R1",
		Description:                "DeepSeek's flagship reasoning model with high efficiency.",
		InputTokenLimit:            128000,
		OutputTokenLimit:           16384,
		SupportedGenerationMethods: []string{"generateContent"},
		Temperature:                0.6,
		TopP:                       0.95,
		TopK:                       40,
		MaxTemperature:             1.5,
		Thinking:                   true,
	},
}

// Models returns the catalog entries in display order.
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// Lookup returns the catalog entry for the given model name.
func Lookup(name string) (Model, bool) {
	for _, m := range models {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// IsAllowed reports whether the model name is served by the completion API.
func IsAllowed(name string) bool {
	_, ok := Lookup(name)
	return ok
}
