// Package classifier assigns incoming messages to coarse intent buckets
// with a canned response and a confidence score. Classification is pure
// regex matching; the workflow engine decides what to do with the score.
package classifier

import (
	"regexp"
	"strings"
)

// Message types.
const (
	TypePricing  = "pricing"
	TypeSupport  = "support"
	TypeGeneral  = "general"
	TypeGreeting = "greeting"
	TypeOther    = "other"
)

// Result is the outcome of classifying one message.
type Result struct {
	Type       string  `json:"type"`
	Response   string  `json:"response"`
	Confidence float64 `json:"confidence"`
}

// group is one intent bucket. Groups are evaluated in order and the
// first match wins, so pricing beats support beats general beats
// greeting. "how much does support cost" is a pricing inquiry.
type group struct {
	typ        string
	response   string
	confidence float64
	patterns   []*regexp.Regexp
}

// Classifier matches messages against an ordered list of intent groups.
type Classifier struct {
	groups   []group
	fallback Result
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// New returns a Classifier with the built-in intent groups.
func New() *Classifier {
	return &Classifier{
		groups: []group{
			{
				typ:        TypePricing,
				response:   "Our pricing starts from $99. Would you like the full details?",
				confidence: 0.9,
				patterns: compile(
					`\b(price|cost|budget|expensive|cheap|affordable)\b`,
					`\b(how much|pricing|quote|estimate|fee|charge)\b`,
					`\b(payment|money|dollar|rupee|costs)\b`,
					`\b(rate|rates|tariff|tariffs)\b`,
				),
			},
			{
				typ:        TypeSupport,
				response:   "I'm here to help. Could you share more details about the issue?",
				confidence: 0.8,
				patterns: compile(
					`\b(help|support|issue|problem|error|bug|fix)\b`,
					`\b(not working|broken|down|trouble|difficulty)\b`,
					`\b(how to|how do|tutorial|guide|instructions)\b`,
					`\b(complaint|complaints|dissatisfied|unhappy)\b`,
				),
			},
			{
				typ:        TypeGeneral,
				response:   "Thanks for your message! Our team will respond shortly.",
				confidence: 0.7,
				patterns: compile(
					`\b(thank|thanks|appreciate|grateful)\b`,
					`\b(information|info|details|more)\b`,
					`\b(contact|reach|get in touch)\b`,
				),
			},
			{
				typ:        TypeGreeting,
				response:   "Hello 👋 How can I help you today?",
				confidence: 0.9,
				patterns: compile(
					`\b(hello|hi|hey|good morning|good afternoon|good evening)\b`,
				),
			},
		},
		fallback: Result{
			Type:       TypeOther,
			Response:   "Thanks for your message! Our team will respond shortly.",
			Confidence: 0.5,
		},
	}
}

// Classify lowercases and trims the message, then returns the first
// matching group. Unmatched messages fall back to "other" at 0.5.
func (c *Classifier) Classify(message string) Result {
	msg := strings.TrimSpace(strings.ToLower(message))

	for _, g := range c.groups {
		for _, p := range g.patterns {
			if p.MatchString(msg) {
				return Result{Type: g.typ, Response: g.response, Confidence: g.confidence}
			}
		}
	}
	return c.fallback
}
