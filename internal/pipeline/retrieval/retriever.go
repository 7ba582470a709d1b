// internal/pipeline/retrieval/retriever.go
package retrieval

import (
	"context"
	"sort"
	"time"

	"campus-assist/internal/common/logger"
	"campus-assist/internal/common/metrics"
	"campus-assist/internal/models"
)

// EmbeddingProvider turns query text into a vector.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex returns the k nearest passages for an embedding, ranked by
// similarity. Implementations must be safe for concurrent use.
type VectorIndex interface {
	Query(ctx context.Context, embedding []float32, k int) ([]models.RetrievedPassage, error)
}

type Config struct {
	TopK           int
	ScoreThreshold float64
	Timeout        time.Duration
}

// Result carries the ranked passages for one query. Degraded marks
// no-context mode: the index or embedder was unreachable and the
// pipeline continues without grounding.
type Result struct {
	Passages []models.RetrievedPassage
	Degraded bool
}

// Retriever queries the vector index and ranks the hits. It never fails
// the pipeline: any upstream error turns into an empty degraded result.
type Retriever struct {
	config   *Config
	embedder EmbeddingProvider
	index    VectorIndex
	logger   logger.Logger
}

func NewRetriever(config *Config, embedder EmbeddingProvider, index VectorIndex, log logger.Logger) *Retriever {
	return &Retriever{
		config:   config,
		embedder: embedder,
		index:    index,
		logger:   log.WithFields(map[string]interface{}{"stage": "retrieval"}),
	}
}

// Retrieve embeds the query, fetches nearest neighbors, then filters by
// score threshold, dedupes by source document keeping the best hit,
// sorts descending and caps to TopK.
func (r *Retriever) Retrieve(ctx context.Context, queryText string) Result {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	embedding, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return r.degrade("query embedding failed", err)
	}

	// Over-fetch so that dedupe does not leave us short of TopK.
	hits, err := r.index.Query(ctx, embedding, r.config.TopK*2)
	if err != nil {
		return r.degrade("vector index query failed", err)
	}

	return Result{Passages: r.rank(hits)}
}

func (r *Retriever) degrade(msg string, err error) Result {
	metrics.DegradedRetrievals.Inc()
	r.logger.Warn(msg+", continuing without context", map[string]interface{}{
		"error": err.Error(),
	})
	return Result{Passages: nil, Degraded: true}
}

// rank keeps hits at or above the threshold, one per source document
// (highest score wins, earlier hit wins a tie), sorted by non-increasing
// score and capped to TopK. Stable sort preserves index order on ties.
func (r *Retriever) rank(hits []models.RetrievedPassage) []models.RetrievedPassage {
	bestByDoc := make(map[string]int, len(hits))
	kept := make([]models.RetrievedPassage, 0, len(hits))

	for _, h := range hits {
		if h.Score < r.config.ScoreThreshold {
			continue
		}
		if i, seen := bestByDoc[h.DocumentID]; seen {
			if h.Score > kept[i].Score {
				kept[i] = h
			}
			continue
		}
		bestByDoc[h.DocumentID] = len(kept)
		kept = append(kept, h)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	if len(kept) > r.config.TopK {
		kept = kept[:r.config.TopK]
	}
	return kept
}
