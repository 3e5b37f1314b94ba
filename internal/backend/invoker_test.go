package backend

import (
	"context"
	"errors"
	"testing"
)

type fakeCompleter struct {
	failures int
	calls    []string
	text     string
}

func (f *fakeCompleter) Complete(_ context.Context, model string, _ []Message, _ Params) (Result, error) {
	f.calls = append(f.calls, model)
	if len(f.calls) <= f.failures {
		return Result{}, errors.New("upstream unavailable")
	}
	return Result{Text: f.text}, nil
}

func (f *fakeCompleter) Stream(ctx context.Context, model string, messages []Message, params Params) (TextStream, error) {
	_, err := f.Complete(ctx, model, messages, params)
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func TestResolveModel(t *testing.T) {
	cases := []struct {
		alias string
		want  string
	}{
		{"llama-3.3-70b-versatile", "llama-3.3-70b-versatile"},
		{"Meta-Llama-3", "llama-3.3-70b-versatile"},
		{"mixtral-8x7b", "mixtral-8x7b-32768"},
		{"gemma-7b", "gemma2-9b-it"},
		{"grok-4", "llama-3.3-70b-versatile"},
		{"claude-opus-4.6", "llama-3.3-70b-versatile"},
	}
	for _, tc := range cases {
		if got := ResolveModel(tc.alias); got != tc.want {
			t.Fatalf("ResolveModel(%q) = %q, want %q", tc.alias, got, tc.want)
		}
	}
}

func TestInvokeFirstAttemptWins(t *testing.T) {
	primary := &fakeCompleter{text: "ok"}
	inv := &Invoker{primary: primary, secondary: &fakeCompleter{}}

	result, err := inv.Invoke(context.Background(), "mixtral-8x7b", nil, Params{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if result.Text != "ok" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if len(primary.calls) != 1 || primary.calls[0] != "mixtral-8x7b-32768" {
		t.Fatalf("unexpected primary calls %v", primary.calls)
	}
}

func TestInvokeFallsBackToStableThenSecondary(t *testing.T) {
	primary := &fakeCompleter{failures: 2}
	secondary := &fakeCompleter{text: "fallback"}
	inv := &Invoker{primary: primary, secondary: secondary}

	result, err := inv.Invoke(context.Background(), "mixtral-8x7b", nil, Params{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if result.Text != "fallback" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if len(primary.calls) != 2 || primary.calls[1] != stableModel {
		t.Fatalf("second attempt should retry the stable model, got %v", primary.calls)
	}
	if len(secondary.calls) != 1 || secondary.calls[0] != openRouterModel {
		t.Fatalf("third attempt should hit the secondary provider, got %v", secondary.calls)
	}
}

func TestInvokeSkipsDuplicateStableAttempt(t *testing.T) {
	primary := &fakeCompleter{failures: 10}
	secondary := &fakeCompleter{failures: 10}
	inv := &Invoker{primary: primary, secondary: secondary}

	if _, err := inv.Invoke(context.Background(), "llama-3.3-70b-versatile", nil, Params{}); err == nil {
		t.Fatalf("expected error when every attempt fails")
	}
	if len(primary.calls) != 1 {
		t.Fatalf("mapped model equals stable model, only one primary attempt expected: %v", primary.calls)
	}
}

func TestInvokeAllAttemptsFail(t *testing.T) {
	inv := &Invoker{primary: &fakeCompleter{failures: 10}, secondary: &fakeCompleter{failures: 10}}
	if _, err := inv.Invoke(context.Background(), "grok-4", nil, Params{}); err == nil {
		t.Fatalf("expected error when every attempt fails")
	}
}

func TestInvokeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &fakeCompleter{text: "ok"}
	inv := &Invoker{primary: primary, secondary: &fakeCompleter{}}
	if _, err := inv.Invoke(ctx, "grok-4", nil, Params{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(primary.calls) != 0 {
		t.Fatalf("no upstream call should happen after cancellation")
	}
}
