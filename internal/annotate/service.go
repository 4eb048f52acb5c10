// Package annotate orchestrates the annotation pipeline: build the
// conversation, invoke the model, persist the record, announce it. The judge
// half of the lifecycle lives in Feedback.
package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/glosslab/gloss/internal/completion"
	"github.com/glosslab/gloss/internal/conversation"
	"github.com/glosslab/gloss/internal/events"
	"github.com/glosslab/gloss/internal/prompts"
	"github.com/glosslab/gloss/internal/store"
)

// Per-domain sampling temperatures, tuned alongside the prompt library.
const (
	wordTemperature float32 = 0.5
	textTemperature float32 = 0.42
)

// RecordStore is the slice of the store gateway the services need.
type RecordStore interface {
	CreateRecord(ctx context.Context, rec store.Record) (int64, error)
	UpdateResult(ctx context.Context, id int64, result bool) error
}

// Completer produces one annotation for a built conversation.
type Completer interface {
	Complete(ctx context.Context, msgs []conversation.Message, temperature float32) (completion.Result, error)
}

// Bus publishes lifecycle events. May be absent.
type Bus interface {
	Publish(subject string, data any) error
}

// WordRequest asks for an annotation of a single word in context.
type WordRequest struct {
	Word     string
	Context  string
	Previous string
	Origin   string
}

// TextRequest asks for an annotation of a passage.
type TextRequest struct {
	Text     string
	Previous string
	Origin   string
}

// Annotation is the caller-visible outcome: the persisted record's id is the
// only handle a later judgment can use.
type Annotation struct {
	ID         int64  `json:"id"`
	Annotation string `json:"annotation"`
}

type Service struct {
	store  RecordStore
	llm    Completer
	lib    *prompts.Library
	bus    Bus
	logger *slog.Logger
}

func New(st RecordStore, llm Completer, lib *prompts.Library, bus Bus, logger *slog.Logger) *Service {
	return &Service{store: st, llm: llm, lib: lib, bus: bus, logger: logger}
}

// AnnotateWord runs the word-domain pipeline.
func (s *Service) AnnotateWord(ctx context.Context, req WordRequest) (Annotation, error) {
	rec := store.Record{Word: req.Word, Context: req.Context, Origin: req.Origin}
	return s.annotate(ctx, prompts.DomainWord, req.Word, req.Context, req.Previous, wordTemperature, rec)
}

// AnnotateText runs the text-domain pipeline.
func (s *Service) AnnotateText(ctx context.Context, req TextRequest) (Annotation, error) {
	rec := store.Record{Text: req.Text, Origin: req.Origin}
	return s.annotate(ctx, prompts.DomainText, req.Text, "", req.Previous, textTemperature, rec)
}

// annotate is the shared shape of both variants. A completion failure creates
// no record; a store failure after a successful completion loses the generated
// text and surfaces the error — there is no local compensation.
func (s *Service) annotate(ctx context.Context, domain prompts.Domain, primary, contextText, previous string, temperature float32, rec store.Record) (Annotation, error) {
	msgs, err := conversation.Build(s.lib, domain, primary, contextText, previous)
	if err != nil {
		return Annotation{}, fmt.Errorf("build conversation: %w", err)
	}

	res, err := s.llm.Complete(ctx, msgs, temperature)
	if err != nil {
		return Annotation{}, fmt.Errorf("%s completion: %w", domain, err)
	}

	s.logger.Info("completion finished",
		"domain", domain,
		"prompt_tokens", res.Usage.PromptTokens,
		"completion_tokens", res.Usage.CompletionTokens,
		"total_tokens", res.Usage.TotalTokens,
	)

	rec.Annotation = res.Content
	id, err := s.store.CreateRecord(ctx, rec)
	if err != nil {
		return Annotation{}, fmt.Errorf("persist %s annotation: %w", domain, err)
	}

	s.publishRecorded(id, domain, rec.Origin, res.Usage)

	return Annotation{ID: id, Annotation: res.Content}, nil
}

func (s *Service) publishRecorded(id int64, domain prompts.Domain, origin string, usage completion.Usage) {
	if s.bus == nil {
		return
	}
	evt := events.Recorded{
		EventID:          uuid.NewString(),
		RecordID:         id,
		Domain:           string(domain),
		Origin:           origin,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		RecordedAt:       events.Timestamp(time.Now()),
	}
	if err := s.bus.Publish(events.SubjectRecorded, evt); err != nil {
		s.logger.Warn("failed to publish recorded event", "record_id", id, "error", err)
	}
}
