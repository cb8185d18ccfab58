package chat_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	"github.com/zhouzirui/startup-mentor/backend/internal/service/ai"
)

// fakeTransport hands every stream's writer to the test so fragments can be
// emitted one by one.
type fakeTransport struct {
	mu            sync.Mutex
	requests      []ai.ChatRequest
	dossierCalls  []ai.DossierRequest
	streamErr     error
	panicOnStream bool
	stream        func(ctx context.Context, req ai.ChatRequest) (*schema.StreamReader[string], error)
	dossier       *ai.Dossier
	dossierErr    error

	writers chan *schema.StreamWriter[string]
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{writers: make(chan *schema.StreamWriter[string], 8)}
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Generate(_ context.Context, req ai.DossierRequest) (*ai.Dossier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dossierCalls = append(f.dossierCalls, req)
	if f.dossierErr != nil {
		return nil, f.dossierErr
	}
	return f.dossier, nil
}

func (f *fakeTransport) StreamChat(ctx context.Context, req ai.ChatRequest) (*schema.StreamReader[string], error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	streamErr, panicOnStream, stream := f.streamErr, f.panicOnStream, f.stream
	f.mu.Unlock()

	if panicOnStream {
		panic("backend exploded")
	}
	if streamErr != nil {
		return nil, streamErr
	}
	if stream != nil {
		return stream(ctx, req)
	}

	reader, writer := schema.Pipe[string](8)
	f.writers <- writer
	return reader, nil
}

func (f *fakeTransport) nextWriter(t *testing.T) *schema.StreamWriter[string] {
	t.Helper()
	select {
	case w := <-f.writers:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("transport was never invoked")
		return nil
	}
}

func (f *fakeTransport) Requests() []ai.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ai.ChatRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// emit sends fragments and then either closes the stream or fails it with err.
func emit(w *schema.StreamWriter[string], err error, fragments ...string) {
	for _, fragment := range fragments {
		w.Send(fragment, nil)
	}
	if err != nil {
		w.Send("", err)
	}
	w.Close()
}

// blockUntilDone is a stream that only ends when ctx does.
func blockUntilDone(ctx context.Context, _ ai.ChatRequest) (*schema.StreamReader[string], error) {
	reader, writer := schema.Pipe[string](1)
	go func() {
		defer writer.Close()
		<-ctx.Done()
		writer.Send("", errors.Join(ai.ErrStreamFailure, ctx.Err()))
	}()
	return reader, nil
}

func elon() mentor.Mentor {
	m, _ := mentor.NewMemoryStore(mentor.Seed()).FindByID("elon")
	return m
}
