package conversation

import (
	"strings"
	"testing"

	"github.com/glosslab/gloss/internal/prompts"
)

const libraryTOML = `
[system]
rules = "RULES"

[system.word]
goal = "WORD-GOAL"
template = "WORD-TEMPLATE"
interlude = "WORD-INTERLUDE"

[system.text]
goal = "TEXT-GOAL"
interlude = "TEXT-INTERLUDE"

[user]
reword = "REWORD"

[user.word]
prompt = "WORD-PREAMBLE"
word_prompt = "WP"
ctx_prompt = "CP"

[user.text]
prompt = "TP"
`

const exampleTOML = `
[[examples.word]]
word = "мир"
context = "во всём мире"
annotation = "WORD-EX-ANSWER"

[[examples.word]]
word = "свет"
context = "свет в окне"
annotation = "WORD-EX-ANSWER-2"

[[examples.text]]
text = "пример текста"
annotation = "TEXT-EX-ANSWER"
`

func mustLibrary(t *testing.T, doc string) *prompts.Library {
	t.Helper()
	lib, err := prompts.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse library: %v", err)
	}
	return lib
}

func roles(msgs []Message) []Role {
	out := make([]Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func TestBuild_WordOrder(t *testing.T) {
	lib := mustLibrary(t, libraryTOML)

	msgs, err := Build(lib, prompts.DomainWord, "bank", "river bank", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msgs) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(msgs))
	}

	want := []Role{RoleSystem, RoleSystem, RoleSystem, RoleSystem, RoleUser, RoleUser}
	for i, r := range roles(msgs) {
		if r != want[i] {
			t.Errorf("message %d: expected role %s, got %s", i, want[i], r)
		}
	}

	if msgs[0].Content != "WORD-GOAL" {
		t.Errorf("expected goal first, got %q", msgs[0].Content)
	}
	if msgs[1].Content != "RULES" {
		t.Errorf("expected rules second, got %q", msgs[1].Content)
	}
	if msgs[2].Content != "WORD-TEMPLATE" {
		t.Errorf("expected template third, got %q", msgs[2].Content)
	}
	if msgs[3].Content != "WORD-INTERLUDE" {
		t.Errorf("expected interlude fourth, got %q", msgs[3].Content)
	}
	if msgs[4].Content != "WORD-PREAMBLE" {
		t.Errorf("expected preamble fifth, got %q", msgs[4].Content)
	}
	if !strings.Contains(msgs[5].Content, "<СЛОВО>bank</СЛОВО>") {
		t.Errorf("expected word in delimiter tags, got %q", msgs[5].Content)
	}
	if !strings.Contains(msgs[5].Content, "<КОНТЕКСТ>river bank</КОНТЕКСТ>") {
		t.Errorf("expected context in delimiter tags, got %q", msgs[5].Content)
	}
}

func TestBuild_TextOrder(t *testing.T) {
	lib := mustLibrary(t, libraryTOML)

	msgs, err := Build(lib, prompts.DomainText, "какой-то текст", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}

	want := []Role{RoleSystem, RoleSystem, RoleSystem, RoleUser}
	for i, r := range roles(msgs) {
		if r != want[i] {
			t.Errorf("message %d: expected role %s, got %s", i, want[i], r)
		}
	}

	if msgs[0].Content != "TEXT-GOAL" || msgs[1].Content != "RULES" || msgs[2].Content != "TEXT-INTERLUDE" {
		t.Errorf("unexpected system sequence: %q, %q, %q", msgs[0].Content, msgs[1].Content, msgs[2].Content)
	}
	if !strings.HasPrefix(msgs[3].Content, "TP") {
		t.Errorf("expected instruction folded into request, got %q", msgs[3].Content)
	}
	if !strings.Contains(msgs[3].Content, "<ТЕКСТ> какой-то текст </ТЕКСТ>") {
		t.Errorf("expected text in delimiter tags, got %q", msgs[3].Content)
	}
}

func TestBuild_WordExamplesPrecedeRequest(t *testing.T) {
	lib := mustLibrary(t, libraryTOML+exampleTOML)

	msgs, err := Build(lib, prompts.DomainWord, "bank", "river bank", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4 system + 2 example pairs + preamble + request
	if len(msgs) != 10 {
		t.Fatalf("expected 10 messages, got %d", len(msgs))
	}

	if msgs[4].Role != RoleUser || !strings.Contains(msgs[4].Content, "<СЛОВО>мир</СЛОВО>") {
		t.Errorf("expected first example input, got %s %q", msgs[4].Role, msgs[4].Content)
	}
	if msgs[5].Role != RoleAssistant || msgs[5].Content != "WORD-EX-ANSWER" {
		t.Errorf("expected first example output, got %s %q", msgs[5].Role, msgs[5].Content)
	}
	if msgs[6].Role != RoleUser || !strings.Contains(msgs[6].Content, "<СЛОВО>свет</СЛОВО>") {
		t.Errorf("expected second example input, got %s %q", msgs[6].Role, msgs[6].Content)
	}
	if msgs[7].Role != RoleAssistant || msgs[7].Content != "WORD-EX-ANSWER-2" {
		t.Errorf("expected second example output, got %s %q", msgs[7].Role, msgs[7].Content)
	}
	if msgs[8].Content != "WORD-PREAMBLE" {
		t.Errorf("expected preamble after examples, got %q", msgs[8].Content)
	}
}

func TestBuild_TextExamplesPrecedeRequest(t *testing.T) {
	lib := mustLibrary(t, libraryTOML+exampleTOML)

	msgs, err := Build(lib, prompts.DomainText, "текст", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3 system + 1 example pair + request
	if len(msgs) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(msgs))
	}
	if msgs[3].Role != RoleUser || !strings.Contains(msgs[3].Content, "<ТЕКСТ>пример текста</ТЕКСТ>") {
		t.Errorf("expected example input, got %s %q", msgs[3].Role, msgs[3].Content)
	}
	if msgs[4].Role != RoleAssistant || msgs[4].Content != "TEXT-EX-ANSWER" {
		t.Errorf("expected example output, got %s %q", msgs[4].Role, msgs[4].Content)
	}
}

func TestBuild_PreviousAppendsRewordTail(t *testing.T) {
	lib := mustLibrary(t, libraryTOML)

	for _, domain := range []prompts.Domain{prompts.DomainWord, prompts.DomainText} {
		msgs, err := Build(lib, domain, "input", "ctx", "старый ответ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		last := msgs[len(msgs)-1]
		prev := msgs[len(msgs)-2]

		if prev.Role != RoleAssistant || prev.Content != "старый ответ" {
			t.Errorf("%s: expected previous annotation as assistant turn, got %s %q", domain, prev.Role, prev.Content)
		}
		if last.Role != RoleUser || last.Content != "REWORD" {
			t.Errorf("%s: expected reword instruction last, got %s %q", domain, last.Role, last.Content)
		}
	}
}

func TestBuild_NoPreviousNoTail(t *testing.T) {
	lib := mustLibrary(t, libraryTOML)

	msgs, err := Build(lib, prompts.DomainWord, "bank", "river bank", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, m := range msgs {
		if m.Role == RoleAssistant {
			t.Errorf("unexpected assistant turn without previous: %q", m.Content)
		}
		if m.Content == "REWORD" {
			t.Errorf("unexpected reword instruction without previous")
		}
	}
}

func TestBuild_UnknownDomain(t *testing.T) {
	lib := mustLibrary(t, libraryTOML)

	_, err := Build(lib, prompts.Domain("sentence"), "x", "", "")
	if err == nil {
		t.Fatal("expected error for unknown domain")
	}
}
