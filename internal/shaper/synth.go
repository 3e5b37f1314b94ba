package shaper

import (
	"math/rand"
	"strings"
	"time"
)

const (
	base36Alphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
	alphanumAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	signatureAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

	responseIDLength       = 22
	thoughtSignatureLength = 1200
)

// Synth fabricates the non-semantic identifiers and token counts that dress
// up shaped responses. All randomness is isolated here so tests can inject a
// seeded source and the rest of the shaper stays deterministic.
type Synth struct {
	rnd *rand.Rand
}

// NewSynth constructs a Synth. A nil source falls back to a time-seeded one.
func NewSynth(rnd *rand.Rand) *Synth {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synth{rnd: rnd}
}

// OpenAIID fabricates a chatcmpl- response ID.
func (s *Synth) OpenAIID() string {
	return "chatcmpl-" + s.pick(base36Alphabet, 13)
}

// ClaudeID fabricates a msg_ response ID.
func (s *Synth) ClaudeID() string {
	return "msg_" + s.pick(base36Alphabet, 13)
}

// XvAIID fabricates a vmsg_ response ID.
func (s *Synth) XvAIID() string {
	return "vmsg_" + s.pick(base36Alphabet, 10)
}

// GeminiResponseID fabricates a 22-character alphanumeric response ID.
func (s *Synth) GeminiResponseID() string {
	return s.pick(alphanumAlphabet, responseIDLength)
}

// ThoughtSignature fabricates a 1200-character base64-alphabet signature.
func (s *Synth) ThoughtSignature() string {
	return s.pick(signatureAlphabet, thoughtSignatureLength)
}

// IntN returns a value in [0, n).
func (s *Synth) IntN(n int) int {
	return s.rnd.Intn(n)
}

func (s *Synth) pick(alphabet string, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(alphabet[s.rnd.Intn(len(alphabet))])
	}
	return b.String()
}
