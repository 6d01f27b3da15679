package query

import (
	"context"
	"errors"
	"testing"

	"github.com/elsinore-cloud/hamletqa/internal/domain"
)

type mockEmbedder struct {
	vector []float32
	err    error
	calls  int
	last   string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	m.last = text
	return m.vector, m.err
}

type mockRetriever struct {
	docs     []domain.RetrievedDocument
	err      error
	calls    int
	lastVec  []float32
	lastK    int
}

func (m *mockRetriever) TopK(_ context.Context, vector []float32, k int) ([]domain.RetrievedDocument, error) {
	m.calls++
	m.lastVec = vector
	m.lastK = k
	return m.docs, m.err
}

type mockGenerator struct {
	answer   string
	err      error
	calls    int
	lastDocs []domain.RetrievedDocument
}

func (m *mockGenerator) Generate(_ context.Context, _ string, docs []domain.RetrievedDocument) (string, error) {
	m.calls++
	m.lastDocs = docs
	return m.answer, m.err
}

func TestAnswer_Success(t *testing.T) {
	docs := []domain.RetrievedDocument{
		{Key: "b:1", Text: "Hamlet stabs Claudius", Title: "Act 5", Distance: 0.2},
		{Key: "b:2", Text: "The poisoned cup", Title: "Act 5", Distance: 0.3},
	}
	embed := &mockEmbedder{vector: []float32{0.1, 0.2}}
	retrieve := &mockRetriever{docs: docs}
	generate := &mockGenerator{answer: "Hamlet stabs him with the poisoned sword."}

	svc := New(embed, retrieve, generate, 3)
	result, err := svc.Answer(context.Background(), "Who kills Claudius?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Answer != "Hamlet stabs him with the poisoned sword." {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if len(result.Sources) != 2 {
		t.Errorf("got %d sources, want 2", len(result.Sources))
	}
	if embed.last != "Who kills Claudius?" {
		t.Errorf("embedded text = %q", embed.last)
	}
	if retrieve.lastK != 3 {
		t.Errorf("k = %d, want 3", retrieve.lastK)
	}
	if len(retrieve.lastVec) != 2 {
		t.Errorf("search vector length = %d, want 2", len(retrieve.lastVec))
	}
	if len(generate.lastDocs) != 2 {
		t.Errorf("generator received %d docs, want 2", len(generate.lastDocs))
	}
}

func TestAnswer_NoDocumentsSkipsGeneration(t *testing.T) {
	embed := &mockEmbedder{vector: []float32{0.1}}
	retrieve := &mockRetriever{docs: nil}
	generate := &mockGenerator{answer: "should not be used"}

	svc := New(embed, retrieve, generate, 3)
	result, err := svc.Answer(context.Background(), "Who is Fortinbras of Poland?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Answer != domain.NoRelevantInformationAnswer {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Errorf("got %d sources, want 0", len(result.Sources))
	}
	if generate.calls != 0 {
		t.Errorf("generator called %d times, want 0", generate.calls)
	}
}

func TestAnswer_EmbedFailureStopsPipeline(t *testing.T) {
	embed := &mockEmbedder{err: domain.ErrEmbeddingFailure}
	retrieve := &mockRetriever{}
	generate := &mockGenerator{}

	svc := New(embed, retrieve, generate, 3)
	_, err := svc.Answer(context.Background(), "Who kills Claudius?")
	if !errors.Is(err, domain.ErrEmbeddingFailure) {
		t.Errorf("got %v, want embedding failure", err)
	}
	if retrieve.calls != 0 {
		t.Errorf("retriever called %d times, want 0", retrieve.calls)
	}
	if generate.calls != 0 {
		t.Errorf("generator called %d times, want 0", generate.calls)
	}
}

func TestAnswer_SearchFailureStopsPipeline(t *testing.T) {
	embed := &mockEmbedder{vector: []float32{0.1}}
	retrieve := &mockRetriever{err: domain.ErrIndexUnavailable}
	generate := &mockGenerator{}

	svc := New(embed, retrieve, generate, 3)
	_, err := svc.Answer(context.Background(), "Who kills Claudius?")
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("got %v, want index unavailable", err)
	}
	if generate.calls != 0 {
		t.Errorf("generator called %d times, want 0", generate.calls)
	}
}

func TestAnswer_GenerationFailure(t *testing.T) {
	embed := &mockEmbedder{vector: []float32{0.1}}
	retrieve := &mockRetriever{docs: []domain.RetrievedDocument{{Key: "b:1", Text: "act 5"}}}
	generate := &mockGenerator{err: domain.ErrRateLimited}

	svc := New(embed, retrieve, generate, 3)
	_, err := svc.Answer(context.Background(), "Who kills Claudius?")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("got %v, want rate limited", err)
	}
	if !domain.IsUpstream(err) {
		t.Error("wrapped generation error should stay upstream")
	}
}
