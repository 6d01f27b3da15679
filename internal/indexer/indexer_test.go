package indexer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/elsinore-cloud/hamletqa/internal/db"
)

type mockStore struct {
	exists    bool
	existsErr error
	createErr error
	hsetErr   error

	created *db.IndexDefinition
	items   []db.HashSetItem
}

func (m *mockStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.items = items
	return m.hsetErr
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.created = def
	return m.createErr
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

type mockEmbedder struct {
	dim     int
	failFor map[string]bool
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.failFor[text] {
		return nil, errors.New("embedding failed")
	}
	vec := make([]float32, m.dim)
	for i := range vec {
		vec[i] = 0.5
	}
	return vec, nil
}

func newTestIndexer(store *mockStore, embed *mockEmbedder) *Service {
	return New(store, embed, NewChunker(1000, 200), "hamlet-bucket", "hamlet-index", zap.NewNop())
}

func TestBuild(t *testing.T) {
	store := &mockStore{}
	embed := &mockEmbedder{dim: 4}
	svc := newTestIndexer(store, embed)

	report, err := svc.Build(context.Background(), "The ghost appears on the battlements.", "Hamlet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Chunks != 1 || report.Stored != 1 || report.Skipped != 0 {
		t.Errorf("report = %+v", report)
	}
	if len(store.items) != 1 {
		t.Fatalf("stored %d items, want 1", len(store.items))
	}

	item := store.items[0]
	if !strings.HasPrefix(item.Key, "hamlet-bucket:") {
		t.Errorf("key = %q, want bucket prefix", item.Key)
	}
	if item.Fields["text"] != "The ghost appears on the battlements." {
		t.Errorf("text = %q", item.Fields["text"])
	}
	if item.Fields["title"] != "Hamlet" {
		t.Errorf("title = %q", item.Fields["title"])
	}
	if len(item.Fields["vector"]) != 16 {
		t.Errorf("vector blob is %d bytes, want 16", len(item.Fields["vector"]))
	}
}

func TestBuild_CreatesIndexWhenAbsent(t *testing.T) {
	store := &mockStore{exists: false}
	embed := &mockEmbedder{dim: 4}
	svc := newTestIndexer(store, embed)

	if _, err := svc.Build(context.Background(), "The ghost appears.", "Hamlet"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	def := store.created
	if def == nil {
		t.Fatal("index was not created")
	}
	if def.Name != "hamlet-index" {
		t.Errorf("index name = %q", def.Name)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "hamlet-bucket:" {
		t.Errorf("prefixes = %v", def.Prefixes)
	}

	var vectorField *db.IndexField
	for i := range def.Fields {
		if def.Fields[i].Type == db.IndexFieldVector {
			vectorField = &def.Fields[i]
		}
	}
	if vectorField == nil {
		t.Fatal("no vector field in index definition")
	}
	if vectorField.VectorDim != 4 {
		t.Errorf("vector dim = %d, want 4", vectorField.VectorDim)
	}
	if vectorField.VectorDistance != db.DistanceCosine {
		t.Errorf("distance = %v, want cosine", vectorField.VectorDistance)
	}
}

func TestBuild_SkipsIndexCreationWhenPresent(t *testing.T) {
	store := &mockStore{exists: true}
	embed := &mockEmbedder{dim: 4}
	svc := newTestIndexer(store, embed)

	if _, err := svc.Build(context.Background(), "The ghost appears.", "Hamlet"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.created != nil {
		t.Error("index recreated despite existing")
	}
}

func TestBuild_SkipsFailedChunks(t *testing.T) {
	text := "# Act 1\n\nThe ghost appears on the battlements at night.\n\n# Act 2\n\n" +
		strings.Repeat("The players arrive at Elsinore and perform. ", 30)

	store := &mockStore{}
	embed := &mockEmbedder{dim: 4, failFor: map[string]bool{}}
	// Find the chunks first, then fail one of them.
	chunks := NewChunker(1000, 200).Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("test text produced %d chunks, want at least 2", len(chunks))
	}
	embed.failFor[chunks[0]] = true

	svc := newTestIndexer(store, embed)
	report, err := svc.Build(context.Background(), text, "Hamlet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", report.Skipped)
	}
	if report.Stored != report.Chunks-1 {
		t.Errorf("stored = %d, want %d", report.Stored, report.Chunks-1)
	}
}

func TestBuild_FailsWhenNothingEmbeds(t *testing.T) {
	store := &mockStore{}
	embed := &mockEmbedder{dim: 4, failFor: map[string]bool{"The ghost appears.": true}}
	svc := newTestIndexer(store, embed)

	_, err := svc.Build(context.Background(), "The ghost appears.", "Hamlet")
	if err == nil {
		t.Fatal("expected error when no chunk embeds")
	}
	if len(store.items) != 0 {
		t.Error("nothing should have been stored")
	}
}

func TestBuild_EmptySource(t *testing.T) {
	store := &mockStore{}
	embed := &mockEmbedder{dim: 4}
	svc := newTestIndexer(store, embed)

	if _, err := svc.Build(context.Background(), "   \n\n  ", "Hamlet"); err == nil {
		t.Fatal("expected error for empty source text")
	}
	if embed.calls != 0 {
		t.Errorf("embedder called %d times for empty source", embed.calls)
	}
}

func TestVectorToBytes(t *testing.T) {
	got := vectorToBytes([]float32{1.0})
	want := string([]byte{0x00, 0x00, 0x80, 0x3f}) // 1.0 little-endian
	if got != want {
		t.Errorf("got % x, want % x", got, want)
	}

	if len(vectorToBytes(make([]float32, 1024))) != 4096 {
		t.Error("blob should be 4 bytes per element")
	}
}
