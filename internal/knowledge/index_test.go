package knowledge

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/services"
	"github.com/mailforge/mailforge-backend/internal/types"
)

// fakeEmbedder derives a deterministic vector from the text so ranking
// is stable across runs.
type fakeEmbedder struct {
	embedCalls atomic.Int32
	failBatch  bool
}

func (f *fakeEmbedder) Chat(ctx context.Context, messages []services.AIMessage, opts *services.AIOptions) (string, error) {
	return "", fmt.Errorf("chat not supported in this fake")
}

func (f *fakeEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	f.embedCalls.Add(1)
	if f.failBatch && len(inputs) > 1 {
		return nil, fmt.Errorf("batch too large")
	}
	out := make([][]float32, len(inputs))
	for i, text := range inputs {
		vec := make([]float32, 8)
		for j, r := range text {
			vec[j%8] += float32(r) / 1000
		}
		out[i] = vec
	}
	return out, nil
}

type fakeItemRepo struct {
	items map[string][]*types.KnowledgeItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[string][]*types.KnowledgeItem{}}
}

func partitionKey(eventID uuid.UUID, itemType types.KnowledgeItemType) string {
	return eventID.String() + "/" + string(itemType)
}

func (r *fakeItemRepo) ReplaceForEventType(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, itemType types.KnowledgeItemType, items []*types.KnowledgeItem) error {
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
	}
	r.items[partitionKey(eventID, itemType)] = items
	return nil
}

func (r *fakeItemRepo) ListByEventType(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, itemType types.KnowledgeItemType) ([]*types.KnowledgeItem, error) {
	return r.items[partitionKey(eventID, itemType)], nil
}

func (r *fakeItemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.KnowledgeItem, error) {
	var out []*types.KnowledgeItem
	for _, part := range r.items {
		for _, item := range part {
			for _, id := range ids {
				if item.ID == id {
					out = append(out, item)
				}
			}
		}
	}
	return out, nil
}

func newTestIndex(t *testing.T) (Index, *fakeItemRepo, *fakeEmbedder) {
	t.Helper()
	repo := newFakeItemRepo()
	ai := &fakeEmbedder{}
	return NewIndex(repo, ai, nil, logger.NewNop()), repo, ai
}

func TestIndexProgramAndSearch(t *testing.T) {
	ix, repo, _ := newTestIndex(t)
	eventID := uuid.New()

	n, err := ix.IndexProgram(context.Background(), eventID, []ProgramItem{
		{Title: "Scaling Postgres", Speaker: "Dana Reyes", Abstract: "Sharding and replication in practice"},
		{Title: "Streaming Systems", Speaker: "Sam Okafor", Abstract: "Kafka topologies for event pipelines"},
		{Title: "Email Deliverability", Speaker: "Ed Chen", Abstract: "SPF, DKIM and inbox placement"},
	})
	if err != nil {
		t.Fatalf("IndexProgram: %v", err)
	}
	if n != 3 {
		t.Fatalf("want=3 indexed got=%d", n)
	}
	if got := len(repo.items[partitionKey(eventID, types.KnowledgeProgramItem)]); got != 3 {
		t.Fatalf("want=3 stored got=%d", got)
	}

	hits, err := ix.Search(context.Background(), eventID, "postgres scaling", types.KnowledgeProgramItem, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("want=2 hits got=%d", len(hits))
	}
	for _, h := range hits {
		if h.Score == 0 {
			t.Errorf("zero score for %q", h.Content)
		}
		if h.Metadata["speaker"] == "" {
			t.Errorf("metadata missing for %q", h.Content)
		}
	}
}

func TestSearchDeterministic(t *testing.T) {
	ix, _, _ := newTestIndex(t)
	eventID := uuid.New()

	_, err := ix.IndexStyleSnippets(context.Background(), eventID, []string{
		"Short. Punchy. Direct sentences that get to the point.",
		"Warm and welcoming copy that speaks to the reader personally.",
		"Data-first copy leaning on numbers and outcomes.",
	})
	if err != nil {
		t.Fatalf("IndexStyleSnippets: %v", err)
	}

	first, err := ix.Search(context.Background(), eventID, "professional", types.KnowledgeStyleSnippet, 3)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := ix.Search(context.Background(), eventID, "professional", types.KnowledgeStyleSnippet, 3)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("ranking not deterministic:\nfirst=%v\nsecond=%v", first, second)
	}
}

func TestSearchEmptyCorpus(t *testing.T) {
	ix, _, _ := newTestIndex(t)
	hits, err := ix.Search(context.Background(), uuid.New(), "anything", types.KnowledgePainPoint, 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("want empty result, got %d", len(hits))
	}
}

func TestIndexPainPointsSplitsDoc(t *testing.T) {
	ix, repo, _ := newTestIndex(t)
	eventID := uuid.New()

	doc := "84. Teams struggle to keep up with the pace of change in their tooling and platforms.\n" +
		"85. Hiring senior engineers takes too long and onboarding them takes even longer for teams.\n" +
		"86. Budgets for training are shrinking while expectations keep rising across the company."
	n, err := ix.IndexPainPoints(context.Background(), eventID, doc)
	if err != nil {
		t.Fatalf("IndexPainPoints: %v", err)
	}
	if n != 3 {
		t.Fatalf("want=3 got=%d", n)
	}
	stored := repo.items[partitionKey(eventID, types.KnowledgePainPoint)]
	for _, item := range stored {
		if item.ItemType != types.KnowledgePainPoint {
			t.Errorf("wrong type: %s", item.ItemType)
		}
		if len(item.Embedding) == 0 {
			t.Errorf("missing embedding for %q", item.Content)
		}
	}
}

func TestEmbedBatchFallback(t *testing.T) {
	repo := newFakeItemRepo()
	ai := &fakeEmbedder{failBatch: true}
	ix := NewIndex(repo, ai, nil, logger.NewNop())
	eventID := uuid.New()

	n, err := ix.IndexStyleSnippets(context.Background(), eventID, []string{
		"First style snippet with enough words to embed.",
		"Second style snippet, different wording entirely.",
	})
	if err != nil {
		t.Fatalf("IndexStyleSnippets: %v", err)
	}
	if n != 2 {
		t.Fatalf("want=2 got=%d", n)
	}
	// One failed batch call plus one per-item call per text.
	if got := ai.embedCalls.Load(); got != 3 {
		t.Fatalf("want=3 embed calls got=%d", got)
	}
}

func TestParseProgramRows(t *testing.T) {
	raw := strings.Join([]string{
		"Title\tSpeaker\tTime\tTrack\tAbstract",
		"Scaling Postgres\tDana Reyes\t10:00\tData\tSharding in practice",
		"\t\t\t\t",
		"Streaming Systems\tSam Okafor\t11:00\tInfra\tKafka topologies",
	}, "\n")

	items := parseProgramRows(raw)
	if len(items) != 2 {
		t.Fatalf("want=2 got=%d: %v", len(items), items)
	}
	if items[0].Title != "Scaling Postgres" || items[0].Speaker != "Dana Reyes" {
		t.Fatalf("bad first row: %+v", items[0])
	}
	if items[1].Track != "Infra" {
		t.Fatalf("bad second row: %+v", items[1])
	}
}
