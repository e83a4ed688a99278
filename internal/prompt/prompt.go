// Package prompt classifies incoming user turns and assembles the single
// upstream prompt from the instruction template, conversation history, and
// the new turn.
package prompt

import (
	"strings"
	"sync"

	"github.com/medassist-labs/medchat/internal/session"
)

// Kind is the classification of a new user turn.
type Kind int

const (
	Normal Kind = iota
	Greeting
	FollowUp
)

func (k Kind) String() string {
	switch k {
	case Greeting:
		return "greeting"
	case FollowUp:
		return "followup"
	default:
		return "normal"
	}
}

// DefaultTemplate is the base instruction block used when no template file is
// configured.
const DefaultTemplate = `You are a careful medical assistant. Answer health questions clearly and factually. Recommend consulting a qualified clinician for diagnosis, dosage changes, or anything that sounds urgent, and say so plainly when you do not know.`

const formattingInstruction = `Format your answer as short paragraphs separated by blank lines. Start list items with "* ". When the user is following up, refer back to the earlier turns of the conversation.`

const (
	normalDirective   = `Answer the user's new question:`
	followupDirective = `The user is following up on the conversation above. Answer in that context:`
)

// Options configures a Builder. Zero fields fall back to package defaults.
type Options struct {
	Template          string
	TemplatePath      string
	GreetingPhrases   []string
	GreetingWordLimit int
	FollowupWordLimit int
	FollowupCues      []string
}

// Builder holds the classification thresholds and the (hot-reloadable)
// instruction template.
type Builder struct {
	mu       sync.RWMutex
	template string

	templatePath      string
	greetingPhrases   []string
	greetingWordLimit int
	followupWordLimit int
	followupCues      []string
}

func NewBuilder(opts Options) (*Builder, error) {
	b := &Builder{
		template:          opts.Template,
		templatePath:      opts.TemplatePath,
		greetingPhrases:   opts.GreetingPhrases,
		greetingWordLimit: opts.GreetingWordLimit,
		followupWordLimit: opts.FollowupWordLimit,
		followupCues:      opts.FollowupCues,
	}
	if b.template == "" {
		b.template = DefaultTemplate
	}
	if len(b.greetingPhrases) == 0 {
		b.greetingPhrases = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "greetings", "namaste"}
	}
	if b.greetingWordLimit == 0 {
		b.greetingWordLimit = 2
	}
	if b.followupWordLimit == 0 {
		b.followupWordLimit = 5
	}
	if len(b.followupCues) == 0 {
		b.followupCues = []string{"more", "explain", "clarify", "further", "continue"}
	}
	if b.templatePath != "" {
		if err := b.Reload(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Classify applies the greeting and follow-up heuristics. These are plain
// substring and word-count checks; the thresholds are configuration, not
// tuned constants.
func (b *Builder) Classify(newPrompt string) Kind {
	p := strings.ToLower(strings.TrimSpace(newPrompt))
	words := len(strings.Fields(p))

	if words <= b.greetingWordLimit {
		for _, g := range b.greetingPhrases {
			if strings.Contains(p, g) {
				return Greeting
			}
		}
	}
	if words < b.followupWordLimit {
		return FollowUp
	}
	for _, cue := range b.followupCues {
		if strings.Contains(p, cue) {
			return FollowUp
		}
	}
	return Normal
}

// Build assembles the upstream prompt: instructions, serialized history, the
// kind-specific directive with the literal new turn, and the trailing
// assistant cue, in that order. Greeting turns never reach Build; the
// controller answers those with the canned reply.
func (b *Builder) Build(history []session.Turn, newPrompt string, kind Kind) string {
	var sb strings.Builder
	sb.WriteString(b.Template())
	sb.WriteString("\n\n")
	sb.WriteString(formattingInstruction)

	if len(history) > 0 {
		sb.WriteString("\n\nConversation so far:\n")
		sb.WriteString(renderHistory(history))
	}

	sb.WriteString("\n\n")
	if kind == FollowUp {
		sb.WriteString(followupDirective)
	} else {
		sb.WriteString(normalDirective)
	}
	sb.WriteString("\nUser: ")
	sb.WriteString(newPrompt)
	sb.WriteString("\nAssistant:")
	return sb.String()
}

// Template returns the current base instruction template.
func (b *Builder) Template() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.template
}

func (b *Builder) setTemplate(t string) {
	b.mu.Lock()
	b.template = t
	b.mu.Unlock()
}

func renderHistory(turns []session.Turn) string {
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if t.Role == session.RoleAssistant {
			sb.WriteString("Assistant: ")
		} else {
			sb.WriteString("User: ")
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}
