// Package backend resolves model aliases to upstream inference providers and
// invokes them with a fixed fallback chain. Callers always receive either raw
// completion text with real usage counts or the error of the last attempt.
package backend

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/visora-labs/visora-relay/internal/config"
	"github.com/visora-labs/visora-relay/internal/shaper"
)

const (
	groqBaseURL       = "https://api.groq.com/openai/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	stableModel     = "llama-3.3-70b-versatile"
	openRouterModel = "google/gemini-2.0-flash-exp:free"
)

// Message is a single chat turn sent upstream.
type Message struct {
	Role    string
	Content string
}

// Params are per-request generation knobs.
type Params struct {
	Temperature float32
	MaxTokens   int
}

// Result is a completed upstream response.
type Result struct {
	Text  string
	Usage *shaper.Usage
}

// TextStream delivers completion text deltas. Recv returns io.EOF when the
// stream ends.
type TextStream interface {
	Recv() (string, error)
	Close() error
}

// completer abstracts a single upstream provider.
type completer interface {
	Complete(ctx context.Context, model string, messages []Message, params Params) (Result, error)
	Stream(ctx context.Context, model string, messages []Message, params Params) (TextStream, error)
}

// ResolveModel maps a public alias to the backend model that serves it.
// Unknown aliases fall back to the stable model.
func ResolveModel(alias string) string {
	lower := strings.ToLower(alias)
	switch {
	case strings.Contains(lower, "llama"):
		return "llama-3.3-70b-versatile"
	case strings.Contains(lower, "mixtral"):
		return "mixtral-8x7b-32768"
	case strings.Contains(lower, "gemma"):
		return "gemma2-9b-it"
	default:
		return stableModel
	}
}

// Invoker runs the attempt chain: the mapped model on the primary provider,
// then the stable model on the primary provider, then the secondary provider.
type Invoker struct {
	primary   completer
	secondary completer
}

// NewInvoker constructs an Invoker backed by Groq and OpenRouter.
func NewInvoker(cfg config.ProviderConfig) *Invoker {
	groqCfg := openai.DefaultConfig(cfg.GroqAPIKey)
	groqCfg.BaseURL = groqBaseURL
	orCfg := openai.DefaultConfig(cfg.OpenRouterAPIKey)
	orCfg.BaseURL = openRouterBaseURL
	return &Invoker{
		primary:   &openaiCompleter{client: openai.NewClientWithConfig(groqCfg)},
		secondary: &openaiCompleter{client: openai.NewClientWithConfig(orCfg)},
	}
}

type attempt struct {
	client completer
	model  string
}

func (inv *Invoker) chain(alias string) []attempt {
	mapped := ResolveModel(alias)
	attempts := []attempt{{inv.primary, mapped}}
	if mapped != stableModel {
		attempts = append(attempts, attempt{inv.primary, stableModel})
	}
	return append(attempts, attempt{inv.secondary, openRouterModel})
}

// Invoke runs the fallback chain and returns the first successful completion.
func (inv *Invoker) Invoke(ctx context.Context, alias string, messages []Message, params Params) (Result, error) {
	var errLast error
	for _, att := range inv.chain(alias) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		result, err := att.client.Complete(ctx, att.model, messages, params)
		if err == nil {
			return result, nil
		}
		errLast = err
		log.WithError(err).WithField("model", att.model).Warn("inference attempt failed")
	}
	return Result{}, fmt.Errorf("all inference attempts failed: %w", errLast)
}

// InvokeStream runs the fallback chain and returns the first stream that
// opens successfully.
func (inv *Invoker) InvokeStream(ctx context.Context, alias string, messages []Message, params Params) (TextStream, error) {
	var errLast error
	for _, att := range inv.chain(alias) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stream, err := att.client.Stream(ctx, att.model, messages, params)
		if err == nil {
			return stream, nil
		}
		errLast = err
		log.WithError(err).WithField("model", att.model).Warn("inference stream attempt failed")
	}
	return nil, fmt.Errorf("all inference attempts failed: %w", errLast)
}

// Generate sends a single user prompt to the named backend model on the
// primary provider. Used for summary style internal completions.
func (inv *Invoker) Generate(ctx context.Context, model, prompt string) (string, error) {
	result, err := inv.primary.Complete(ctx, model, []Message{{Role: "user", Content: prompt}}, Params{})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

type openaiCompleter struct {
	client *openai.Client
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (c *openaiCompleter) Complete(ctx context.Context, model string, messages []Message, params Params) (Result, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(messages),
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return Result{}, err
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("empty completion from %s", model)
	}
	return Result{
		Text: resp.Choices[0].Message.Content,
		Usage: &shaper.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (c *openaiCompleter) Stream(ctx context.Context, model string, messages []Message, params Params) (TextStream, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(messages),
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}
	return &openaiStream{inner: stream}, nil
}

type openaiStream struct {
	inner *openai.ChatCompletionStream
}

func (s *openaiStream) Recv() (string, error) {
	for {
		chunk, err := s.inner.Recv()
		if err != nil {
			return "", err
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		return chunk.Choices[0].Delta.Content, nil
	}
}

func (s *openaiStream) Close() error {
	return s.inner.Close()
}
