// Package conversation assembles the multi-turn prompt sent to the language
// model. The turn order is a contract shared with the prompt library: the
// model's output quality is tuned against this exact sequence, so reordering
// turns or changing how examples are emitted is a breaking change.
package conversation

import (
	"fmt"

	"github.com/glosslab/gloss/internal/prompts"
)

// Role tags a message for the chat-completion endpoint.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Build produces the full conversation for one annotation request.
//
// Both domains open with system messages (goal, shared rules, then the word
// domain's answer template, then the interlude), continue with the library's
// worked examples as user/assistant pairs, and end with the live request. The
// word domain carries its generic instruction as a separate user message; the
// text domain folds it into the request itself. When the caller sends back a
// previous annotation, it is replayed as an assistant turn followed by the
// fixed reword instruction.
func Build(lib *prompts.Library, domain prompts.Domain, primary, context, previous string) ([]Message, error) {
	switch domain {
	case prompts.DomainWord:
		return buildWord(lib, primary, context, previous), nil
	case prompts.DomainText:
		return buildText(lib, primary, previous), nil
	default:
		return nil, fmt.Errorf("unknown domain %q", domain)
	}
}

func buildWord(lib *prompts.Library, word, context, previous string) []Message {
	msgs := []Message{
		{Role: RoleSystem, Content: lib.Goal(prompts.DomainWord)},
		{Role: RoleSystem, Content: lib.Rules()},
		{Role: RoleSystem, Content: lib.WordTemplate()},
		{Role: RoleSystem, Content: lib.Interlude(prompts.DomainWord)},
	}

	for _, ex := range lib.WordExamples() {
		msgs = append(msgs,
			Message{Role: RoleUser, Content: formatWordRequest(lib, ex.Word, ex.Context)},
			Message{Role: RoleAssistant, Content: ex.Annotation},
		)
	}

	msgs = append(msgs,
		Message{Role: RoleUser, Content: lib.WordPreamble()},
		Message{Role: RoleUser, Content: formatWordRequest(lib, word, context)},
	)

	return appendPrevious(msgs, lib, previous)
}

func buildText(lib *prompts.Library, text, previous string) []Message {
	msgs := []Message{
		{Role: RoleSystem, Content: lib.Goal(prompts.DomainText)},
		{Role: RoleSystem, Content: lib.Rules()},
		{Role: RoleSystem, Content: lib.Interlude(prompts.DomainText)},
	}

	for _, ex := range lib.TextExamples() {
		msgs = append(msgs,
			Message{Role: RoleUser, Content: formatTextExample(lib, ex.Text)},
			Message{Role: RoleAssistant, Content: ex.Annotation},
		)
	}

	msgs = append(msgs, Message{Role: RoleUser, Content: formatTextRequest(lib, text)})

	return appendPrevious(msgs, lib, previous)
}

// appendPrevious adds the regenerate tail: the model's earlier answer replayed
// as an assistant turn, then the fixed reword instruction. Empty previous
// contributes nothing.
func appendPrevious(msgs []Message, lib *prompts.Library, previous string) []Message {
	if previous == "" {
		return msgs
	}
	return append(msgs,
		Message{Role: RoleAssistant, Content: previous},
		Message{Role: RoleUser, Content: lib.Reword()},
	)
}

func formatWordRequest(lib *prompts.Library, word, context string) string {
	return fmt.Sprintf("%s <СЛОВО>%s</СЛОВО> \n\n %s <КОНТЕКСТ>%s</КОНТЕКСТ>",
		lib.WordPrompt(), word, lib.CtxPrompt(), context)
}

func formatTextRequest(lib *prompts.Library, text string) string {
	return fmt.Sprintf("%s \n\n <ТЕКСТ> %s </ТЕКСТ>", lib.TextPrompt(), text)
}

func formatTextExample(lib *prompts.Library, text string) string {
	return fmt.Sprintf("%s \n\n <ТЕКСТ>%s</ТЕКСТ>", lib.TextPrompt(), text)
}
