package format

import "testing"

func TestResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text unchanged",
			in:   "Take rest and drink plenty of fluids.",
			want: "Take rest and drink plenty of fluids.",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  hello world \n",
			want: "hello world",
		},
		{
			name: "double-newline paragraphs preserved",
			in:   "First paragraph.\n\nSecond paragraph.",
			want: "First paragraph.\n\nSecond paragraph.",
		},
		{
			name: "single newlines split when no blank line present",
			in:   "First.\nSecond.",
			want: "First.\n\nSecond.",
		},
		{
			name: "empty paragraphs dropped",
			in:   "a\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "star bullets",
			in:   "Common causes:\n\n* dehydration\n* eye strain\n\nSee a doctor if it persists.",
			want: "Common causes:\n\n• dehydration\n• eye strain\n\nSee a doctor if it persists.",
		},
		{
			name: "dash bullets",
			in:   "Options:\n\n- rest\n- hydration",
			want: "Options:\n\n• rest\n• hydration",
		},
		{
			name: "bullet content kept verbatim",
			in:   "List:\n\n* item with  two spaces",
			want: "List:\n\n• item with  two spaces",
		},
		{
			name: "bold line stripped onto its own line",
			in:   "**Important**\n\nDo not exceed the stated dose.",
			want: "Important\n\nDo not exceed the stated dose.",
		},
		{
			name: "inline bold markers left alone",
			in:   "This is **very** important.",
			want: "This is **very** important.",
		},
		{
			name: "bare url becomes anchor",
			in:   "See https://example.com/info for details.",
			want: `See <a href="https://example.com/info" target="_blank">https://example.com/info</a> for details.`,
		},
		{
			name: "bracketed url unwrapped",
			in:   "Source: [https://example.com]",
			want: `Source: <a href="https://example.com" target="_blank">https://example.com</a>`,
		},
		{
			name: "parenthesized duplicate collapsed",
			in:   "Read https://example.com(https://example.com) now.",
			want: `Read <a href="https://example.com" target="_blank">https://example.com</a> now.`,
		},
		{
			name: "url inside bullet",
			in:   "Refs:\n\n* https://example.org/a",
			want: "Refs:\n\n• " + `<a href="https://example.org/a" target="_blank">https://example.org/a</a>`,
		},
		{
			name: "empty input",
			in:   "   \n ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Response(tt.in); got != tt.want {
				t.Errorf("Response(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResponseIdempotentOnPlainText(t *testing.T) {
	inputs := []string{
		"A single plain paragraph with no markup at all.",
		"Para one.\n\nPara two.\n\nPara three.",
	}
	for _, in := range inputs {
		once := Response(in)
		twice := Response(once)
		if once != twice {
			t.Errorf("not idempotent:\nonce  = %q\ntwice = %q", once, twice)
		}
		if once != in {
			t.Errorf("plain input changed: got %q, want %q", once, in)
		}
	}
}

func TestResponseStableOnOwnBulletOutput(t *testing.T) {
	in := "Causes:\n\n* one\n* two"
	once := Response(in)
	twice := Response(once)
	if once != twice {
		t.Errorf("bullet output unstable:\nonce  = %q\ntwice = %q", once, twice)
	}
}
