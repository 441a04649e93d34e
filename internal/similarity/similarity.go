// Package similarity implements the debug-only "similar past entries"
// feature (SPEC_FULL.md §4.15): when a turn is journaled and similarity
// search is enabled, its raw text is embedded and upserted into a
// chromem-go collection keyed by domain, so later debug turns can surface
// the nearest prior entries.
//
// Grounded on the teacher's internal/knowledge/vector_store.go wrapper
// around chromem-go, narrowed to the one collection-per-domain shape this
// engine needs and wired to the deterministic MockEmbedder rather than a
// network embedding provider.
package similarity

import (
	"context"
	"fmt"
	"sort"

	chromem "github.com/philippgille/chromem-go"

	"complexity-engine/internal/embeddings"
	"complexity-engine/internal/types"
)

// Entry is one similar past entry surfaced in the debug model.
type Entry struct {
	EventID string  `json:"event_id"`
	Domain  string  `json:"domain"`
	Score   float32 `json:"score"`
}

// Store wraps a chromem-go database, one collection per ComplexityDomain.
type Store struct {
	db       *chromem.DB
	embedder embeddings.Embedder
}

// NewStore returns an in-memory Store. persistPath, if non-empty, makes
// the store durable across process restarts.
func NewStore(persistPath string, embedder embeddings.Embedder) (*Store, error) {
	var db *chromem.DB
	var err error
	if persistPath != "" {
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("similarity: open persistent store: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}
	return &Store{db: db, embedder: embedder}, nil
}

func collectionName(domain types.ComplexityDomain) string {
	return "domain_" + string(domain)
}

// Upsert embeds text and stores it under eventID in the collection for
// domain, creating the collection on first use.
func (s *Store) Upsert(ctx context.Context, eventID string, domain types.ComplexityDomain, text string) error {
	name := collectionName(domain)
	collection := s.db.GetCollection(name, nil)
	if collection == nil {
		var err error
		collection, err = s.db.CreateCollection(name, nil, nil)
		if err != nil {
			return fmt.Errorf("similarity: create collection %s: %w", name, err)
		}
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("similarity: embed: %w", err)
	}

	return collection.AddDocument(ctx, chromem.Document{
		ID:        eventID,
		Content:   text,
		Metadata:  map[string]string{"domain": string(domain)},
		Embedding: embedding,
	})
}

// TopSimilar returns up to limit prior entries across every domain's
// collection most similar to text, excluding excludeEventID, sorted by
// score descending.
func (s *Store) TopSimilar(ctx context.Context, text string, excludeEventID string, limit int) ([]Entry, error) {
	queryEmbedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("similarity: embed query: %w", err)
	}

	var all []Entry
	for _, domain := range types.AllDomains {
		name := collectionName(domain)
		collection := s.db.GetCollection(name, nil)
		if collection == nil {
			continue
		}
		n := limit + 1
		if c := collection.Count(); n > c {
			n = c
		}
		if n == 0 {
			continue
		}
		results, err := collection.QueryEmbedding(ctx, queryEmbedding, n, nil, nil)
		if err != nil {
			continue
		}
		for _, r := range results {
			if r.ID == excludeEventID {
				continue
			}
			all = append(all, Entry{EventID: r.ID, Domain: string(domain), Score: r.Similarity})
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
