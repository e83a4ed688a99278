package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/medassist-labs/medchat/internal/session"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(Options{})
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	return b
}

func TestClassify(t *testing.T) {
	tests := []struct {
		prompt string
		want   Kind
	}{
		{"hey", Greeting},
		{"Hi", Greeting},
		{"hello there", Greeting},
		{"good morning", Greeting},
		{"hey how are you", FollowUp}, // 4 words: too long for a greeting, short enough for follow-up
		{"can you explain that", FollowUp},
		{"explain", FollowUp},
		{"tell me more about paracetamol dosage limits", FollowUp},
		{"please clarify the difference between these two medicines", FollowUp},
		{"what are the early symptoms of dengue fever", Normal},
		{"my child has had a rash since yesterday evening", Normal},
	}

	b := newTestBuilder(t)
	for _, tt := range tests {
		if got := b.Classify(tt.prompt); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.prompt, got, tt.want)
		}
	}
}

func TestClassifyThresholdsConfigurable(t *testing.T) {
	b, err := NewBuilder(Options{
		GreetingPhrases:   []string{"yo"},
		GreetingWordLimit: 1,
		FollowupWordLimit: 2,
		FollowupCues:      []string{"also"},
	})
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	if got := b.Classify("yo"); got != Greeting {
		t.Errorf("Classify(yo) = %v, want Greeting", got)
	}
	// Two words exceed the greeting limit of 1 and meet the follow-up limit
	// of 2 (the check is strictly less than), so this lands on Normal.
	if got := b.Classify("yo doc"); got != Normal {
		t.Errorf("Classify(yo doc) = %v, want Normal", got)
	}
	if got := b.Classify("doc"); got != FollowUp {
		t.Errorf("Classify(doc) = %v, want FollowUp (1 word under limit 2)", got)
	}
	if got := b.Classify("and also the other thing please"); got != FollowUp {
		t.Errorf("cue match = %v, want FollowUp", got)
	}
	if got := b.Classify("something entirely different happened to me"); got != Normal {
		t.Errorf("got %v, want Normal", got)
	}
}

func TestBuildBlockOrder(t *testing.T) {
	b := newTestBuilder(t)
	history := []session.Turn{
		{Role: session.RoleUser, Text: "I have a headache"},
		{Role: session.RoleAssistant, Text: "How long has it lasted?"},
	}
	got := b.Build(history, "two days now", FollowUp)

	if !strings.HasPrefix(got, DefaultTemplate) {
		t.Error("prompt does not start with the base template")
	}
	if !strings.HasSuffix(got, "\nAssistant:") {
		t.Errorf("prompt does not end with the assistant cue: %q", got[len(got)-30:])
	}

	idx := func(sub string) int {
		i := strings.Index(got, sub)
		if i < 0 {
			t.Fatalf("prompt missing %q:\n%s", sub, got)
		}
		return i
	}
	instrAt := idx(formattingInstruction)
	histAt := idx("User: I have a headache\nAssistant: How long has it lasted?")
	dirAt := idx(followupDirective)
	newAt := idx("User: two days now")
	if !(instrAt < histAt && histAt < dirAt && dirAt < newAt) {
		t.Errorf("blocks out of order: instr=%d history=%d directive=%d new=%d", instrAt, histAt, dirAt, newAt)
	}
}

func TestBuildNormalDirective(t *testing.T) {
	b := newTestBuilder(t)
	got := b.Build(nil, "what causes migraines in adults", Normal)
	if !strings.Contains(got, normalDirective) {
		t.Error("normal prompt missing the normal directive")
	}
	if strings.Contains(got, followupDirective) {
		t.Error("normal prompt contains the follow-up directive")
	}
	if strings.Contains(got, "Conversation so far:") {
		t.Error("empty history should omit the history block")
	}
}

func TestTemplateFromFileAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.txt")
	if err := os.WriteFile(path, []byte("You are a cautious pharmacist."), 0644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	b, err := NewBuilder(Options{TemplatePath: path})
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	if got := b.Template(); got != "You are a cautious pharmacist." {
		t.Errorf("template = %q", got)
	}

	if err := os.WriteFile(path, []byte("You are a triage nurse."), 0644); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}
	if err := b.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := b.Template(); got != "You are a triage nurse." {
		t.Errorf("template after reload = %q", got)
	}

	prompt := b.Build(nil, "anything", Normal)
	if !strings.HasPrefix(prompt, "You are a triage nurse.") {
		t.Error("Build does not use the reloaded template")
	}
}

func TestEmptyTemplateFileRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := NewBuilder(Options{TemplatePath: path}); err == nil {
		t.Error("expected error for empty template file")
	}
}
