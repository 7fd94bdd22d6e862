package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/repos"
	"github.com/mailforge/mailforge-backend/internal/services"
	"github.com/mailforge/mailforge-backend/internal/types"
)

// ProgramItem is one structured session record from the program document.
type ProgramItem struct {
	Title    string   `json:"title"`
	Speaker  string   `json:"speaker"`
	Time     string   `json:"time,omitempty"`
	Track    string   `json:"track,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Index stores typed text items with embeddings per event and answers
// similarity queries.
type Index interface {
	IndexProgram(ctx context.Context, eventID uuid.UUID, items []ProgramItem) (int, error)
	IndexPainPoints(ctx context.Context, eventID uuid.UUID, doc string) (int, error)
	IndexStyleSnippets(ctx context.Context, eventID uuid.UUID, snippets []string) (int, error)
	Search(ctx context.Context, eventID uuid.UUID, query string, itemType types.KnowledgeItemType, topK int) ([]SearchResult, error)
}

type SearchResult struct {
	ID       uuid.UUID      `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

type index struct {
	repo  repos.KnowledgeItemRepo
	ai    services.AIClient
	cache *redis.Client
	log   *logger.Logger
}

// NewIndex builds the knowledge index. cache may be nil; query embeddings
// are then computed on every search.
func NewIndex(repo repos.KnowledgeItemRepo, ai services.AIClient, cache *redis.Client, log *logger.Logger) Index {
	return &index{
		repo:  repo,
		ai:    ai,
		cache: cache,
		log:   log.With("service", "KnowledgeIndex"),
	}
}

func (ix *index) IndexProgram(ctx context.Context, eventID uuid.UUID, items []ProgramItem) (int, error) {
	texts := make([]string, 0, len(items))
	metas := make([]map[string]any, 0, len(items))
	for _, it := range items {
		canonical := strings.TrimSpace(it.Title) + " | " + strings.TrimSpace(it.Speaker) + " | " + strings.TrimSpace(it.Abstract)
		texts = append(texts, canonical)
		meta := map[string]any{
			"title":   it.Title,
			"speaker": it.Speaker,
		}
		if it.Time != "" {
			meta["time"] = it.Time
		}
		if it.Track != "" {
			meta["track"] = it.Track
		}
		if len(it.Tags) > 0 {
			meta["tags"] = it.Tags
		}
		metas = append(metas, meta)
	}
	return ix.replace(ctx, eventID, types.KnowledgeProgramItem, texts, metas)
}

func (ix *index) IndexPainPoints(ctx context.Context, eventID uuid.UUID, doc string) (int, error) {
	paragraphs := SplitNumberedParagraphs(doc, MinParagraphLen)
	metas := make([]map[string]any, len(paragraphs))
	return ix.replace(ctx, eventID, types.KnowledgePainPoint, paragraphs, metas)
}

func (ix *index) IndexStyleSnippets(ctx context.Context, eventID uuid.UUID, snippets []string) (int, error) {
	texts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		texts = append(texts, s)
	}
	metas := make([]map[string]any, len(texts))
	return ix.replace(ctx, eventID, types.KnowledgeStyleSnippet, texts, metas)
}

// replace embeds all texts and atomically rewrites the (event, type)
// partition.
func (ix *index) replace(ctx context.Context, eventID uuid.UUID, itemType types.KnowledgeItemType, texts []string, metas []map[string]any) (int, error) {
	vectors, err := ix.embedAll(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding failed for %s: %w", itemType, err)
	}

	items := make([]*types.KnowledgeItem, 0, len(texts))
	for i, text := range texts {
		item := &types.KnowledgeItem{
			EventID:  eventID,
			ItemType: itemType,
			Content:  text,
		}
		if metas[i] != nil {
			raw, mErr := json.Marshal(metas[i])
			if mErr != nil {
				return 0, mErr
			}
			item.Metadata = datatypes.JSON(raw)
		}
		raw, mErr := json.Marshal(vectors[i])
		if mErr != nil {
			return 0, mErr
		}
		item.Embedding = datatypes.JSON(raw)
		items = append(items, item)
	}

	if err := ix.repo.ReplaceForEventType(ctx, nil, eventID, itemType, items); err != nil {
		return 0, err
	}
	ix.log.Info("Knowledge partition replaced",
		"event_id", eventID, "item_type", itemType, "count", len(items))
	return len(items), nil
}

// embedAll submits one batch; on batch failure it falls back to per-item
// requests, substituting a zero vector only for items that still fail so
// the caller keeps one vector per input.
func (ix *index) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors, err := ix.ai.Embed(ctx, texts)
	if err == nil {
		return vectors, nil
	}
	ix.log.Warn("Batch embedding failed, falling back to per-item requests",
		"count", len(texts), "error", err)

	out := make([][]float32, len(texts))
	var dim int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range texts {
		g.Go(func() error {
			vecs, iErr := ix.ai.Embed(gctx, []string{texts[i]})
			if iErr != nil || len(vecs) != 1 {
				ix.log.Warn("Per-item embedding failed, substituting zero vector",
					"index", i, "error", iErr)
				return nil
			}
			out[i] = vecs[0]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, v := range out {
		if len(v) > 0 {
			dim = len(v)
			break
		}
	}
	if dim == 0 {
		return nil, fmt.Errorf("all embeddings failed")
	}
	for i, v := range out {
		if v == nil {
			out[i] = make([]float32, dim)
		}
	}
	return out, nil
}

func (ix *index) Search(ctx context.Context, eventID uuid.UUID, query string, itemType types.KnowledgeItemType, topK int) ([]SearchResult, error) {
	items, err := ix.repo.ListByEventType(ctx, nil, eventID, itemType)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []SearchResult{}, nil
	}

	queryVec, err := ix.queryEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(items))
	for _, item := range items {
		var vec []float32
		if len(item.Embedding) > 0 {
			if uErr := json.Unmarshal(item.Embedding, &vec); uErr != nil {
				ix.log.Warn("Skipping item with malformed embedding", "item_id", item.ID, "error", uErr)
				continue
			}
		}
		score := CosineSimilarity(queryVec, vec)
		res := SearchResult{
			ID:      item.ID,
			Content: item.Content,
			Score:   score,
		}
		if len(item.Metadata) > 0 {
			var meta map[string]any
			if uErr := json.Unmarshal(item.Metadata, &meta); uErr == nil {
				res.Metadata = meta
			}
		}
		results = append(results, res)
	}

	sortResultsDesc(results)
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

const queryEmbeddingTTL = 24 * time.Hour

func (ix *index) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	key := ""
	if ix.cache != nil {
		sum := sha256.Sum256([]byte(query))
		key = "mailforge:qemb:" + hex.EncodeToString(sum[:])
		if raw, err := ix.cache.Get(ctx, key).Bytes(); err == nil {
			var vec []float32
			if uErr := json.Unmarshal(raw, &vec); uErr == nil && len(vec) > 0 {
				return vec, nil
			}
		}
	}

	vecs, err := ix.ai.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vecs))
	}

	if ix.cache != nil {
		if raw, mErr := json.Marshal(vecs[0]); mErr == nil {
			if sErr := ix.cache.Set(ctx, key, raw, queryEmbeddingTTL).Err(); sErr != nil {
				ix.log.Debug("Query embedding cache write failed", "error", sErr)
			}
		}
	}
	return vecs[0], nil
}
