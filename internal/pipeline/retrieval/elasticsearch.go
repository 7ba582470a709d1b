// internal/pipeline/retrieval/elasticsearch.go
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"campus-assist/internal/common/database"
	"campus-assist/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchIndex runs kNN queries against a dense-vector index.
// Documents carry text, document_id and provenance alongside the
// embedding field written by the ingestion jobs.
type ElasticsearchIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchIndex(client *database.ElasticsearchClient, index string) *ElasticsearchIndex {
	return &ElasticsearchIndex{client: client.Client, index: index}
}

type knnRequest struct {
	KNN    knnClause `json:"knn"`
	Size   int       `json:"size"`
	Source []string  `json:"_source"`
}

type knnClause struct {
	Field         string    `json:"field"`
	QueryVector   []float32 `json:"query_vector"`
	K             int       `json:"k"`
	NumCandidates int       `json:"num_candidates"`
}

type knnResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				DocumentID string `json:"document_id"`
				Text       string `json:"text"`
				Provenance string `json:"provenance"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *ElasticsearchIndex) Query(ctx context.Context, embedding []float32, k int) ([]models.RetrievedPassage, error) {
	body, err := json.Marshal(knnRequest{
		KNN: knnClause{
			Field:         "embedding",
			QueryVector:   embedding,
			K:             k,
			NumCandidates: k * 10,
		},
		Size:   k,
		Source: []string{"document_id", "text", "provenance"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build knn query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("knn search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("knn search error: %s", res.Status())
	}

	var parsed knnResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode knn response: %w", err)
	}

	passages := make([]models.RetrievedPassage, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		passages = append(passages, models.RetrievedPassage{
			DocumentID: h.Source.DocumentID,
			Text:       h.Source.Text,
			Score:      h.Score,
			Provenance: h.Source.Provenance,
		})
	}
	return passages, nil
}
