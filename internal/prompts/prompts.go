package prompts

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Domain selects which half of the prompt library a request draws from.
type Domain string

const (
	DomainWord Domain = "word"
	DomainText Domain = "text"
)

// ErrTemplateMissing reports a required slot absent from the prompt library.
// This is a deployment problem, not a transient one; the process should refuse
// to start rather than serve requests with a hole in the prompt.
var ErrTemplateMissing = errors.New("prompt template missing")

// Library is the parsed prompt file. Loaded once at startup and never mutated,
// so it is safe for concurrent reads from any number of in-flight requests.
type Library struct {
	System   systemSection   `toml:"system"`
	User     userSection     `toml:"user"`
	Examples examplesSection `toml:"examples"`
}

type systemSection struct {
	Rules string            `toml:"rules"`
	Word  wordSystemPrompts `toml:"word"`
	Text  textSystemPrompts `toml:"text"`
}

type wordSystemPrompts struct {
	Goal      string `toml:"goal"`
	Template  string `toml:"template"`
	Interlude string `toml:"interlude"`
}

type textSystemPrompts struct {
	Goal      string `toml:"goal"`
	Interlude string `toml:"interlude"`
}

type userSection struct {
	Reword string          `toml:"reword"`
	Word   wordUserPrompts `toml:"word"`
	Text   textUserPrompts `toml:"text"`
}

type wordUserPrompts struct {
	Prompt     string `toml:"prompt"`
	WordPrompt string `toml:"word_prompt"`
	CtxPrompt  string `toml:"ctx_prompt"`
}

type textUserPrompts struct {
	Prompt string `toml:"prompt"`
}

type examplesSection struct {
	Word []WordExample `toml:"word"`
	Text []TextExample `toml:"text"`
}

// WordExample is a worked (input, expected output) pair for the word domain.
type WordExample struct {
	Word       string `toml:"word"`
	Context    string `toml:"context"`
	Annotation string `toml:"annotation"`
}

// TextExample is a worked (input, expected output) pair for the text domain.
type TextExample struct {
	Text       string `toml:"text"`
	Annotation string `toml:"annotation"`
}

// Load reads and validates the prompt library at path.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt library: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML prompt library.
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := toml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse prompt library: %w", err)
	}
	if err := lib.validate(); err != nil {
		return nil, err
	}
	return &lib, nil
}

// validate checks every slot the conversation builder will read. Examples are
// optional; everything else is required.
func (l *Library) validate() error {
	required := []struct {
		slot  string
		value string
	}{
		{"system.rules", l.System.Rules},
		{"system.word.goal", l.System.Word.Goal},
		{"system.word.template", l.System.Word.Template},
		{"system.word.interlude", l.System.Word.Interlude},
		{"system.text.goal", l.System.Text.Goal},
		{"system.text.interlude", l.System.Text.Interlude},
		{"user.word.prompt", l.User.Word.Prompt},
		{"user.word.word_prompt", l.User.Word.WordPrompt},
		{"user.word.ctx_prompt", l.User.Word.CtxPrompt},
		{"user.text.prompt", l.User.Text.Prompt},
		{"user.reword", l.User.Reword},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", ErrTemplateMissing, r.slot)
		}
	}
	return nil
}

// Goal returns the domain's system goal message.
func (l *Library) Goal(d Domain) string {
	if d == DomainWord {
		return l.System.Word.Goal
	}
	return l.System.Text.Goal
}

// Rules returns the domain-independent system rules.
func (l *Library) Rules() string { return l.System.Rules }

// WordTemplate returns the word domain's structural answer template.
func (l *Library) WordTemplate() string { return l.System.Word.Template }

// Interlude returns the domain's system interlude.
func (l *Library) Interlude(d Domain) string {
	if d == DomainWord {
		return l.System.Word.Interlude
	}
	return l.System.Text.Interlude
}

// WordPreamble returns the word domain's generic instruction, sent as its own
// user message ahead of the live request.
func (l *Library) WordPreamble() string { return l.User.Word.Prompt }

// WordPrompt returns the fragment prefixed to the word being annotated.
func (l *Library) WordPrompt() string { return l.User.Word.WordPrompt }

// CtxPrompt returns the fragment prefixed to the word's surrounding context.
func (l *Library) CtxPrompt() string { return l.User.Word.CtxPrompt }

// TextPrompt returns the text domain's instruction, folded into the live request.
func (l *Library) TextPrompt() string { return l.User.Text.Prompt }

// Reword returns the fixed re-explain instruction used when the caller sends a
// previous annotation back.
func (l *Library) Reword() string { return l.User.Reword }

// WordExamples returns the word examples in declared order.
func (l *Library) WordExamples() []WordExample { return l.Examples.Word }

// TextExamples returns the text examples in declared order.
func (l *Library) TextExamples() []TextExample { return l.Examples.Text }
