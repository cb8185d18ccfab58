package ai

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
)

var (
	// ErrGenerationFailure wraps every failed one-shot dossier call.
	ErrGenerationFailure = errors.New("generation failure")
	// ErrStreamFailure wraps every failed or interrupted chat stream.
	ErrStreamFailure = errors.New("stream failure")
)

// ChatRequest carries one chat turn to a backend.
type ChatRequest struct {
	Mentor   mentor.Mentor
	History  []chat.Turn
	UserText string
}

// DossierRequest asks for the structured one-shot mentorship dossier.
type DossierRequest struct {
	Mentor mentor.Mentor
	Idea   string
}

// Transport is the contract every completion backend fulfils.
//
// StreamChat returns a finite, non-restartable reader: Recv yields non-empty
// fragments in emission order and io.EOF on natural completion. Any other
// error from Recv is a stream failure. Callers must Close the reader.
type Transport interface {
	Name() string
	Generate(ctx context.Context, req DossierRequest) (*Dossier, error)
	StreamChat(ctx context.Context, req ChatRequest) (*schema.StreamReader[string], error)
}

// pumpFragments runs produce on its own goroutine and exposes what it emits as
// a StreamReader. emit reports false once the reader side has been closed.
func pumpFragments(produce func(emit func(string) bool) error) *schema.StreamReader[string] {
	reader, writer := schema.Pipe[string](16)
	go func() {
		defer writer.Close()

		err := produce(func(fragment string) bool {
			if fragment == "" {
				return true
			}
			closed := writer.Send(fragment, nil)
			return !closed
		})
		if err != nil {
			writer.Send("", err)
		}
	}()
	return reader
}
