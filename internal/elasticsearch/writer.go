package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/gryroach/theater-search-etl/internal/domain"
	"github.com/gryroach/theater-search-etl/internal/logger"
	"github.com/gryroach/theater-search-etl/internal/retry"
)

// Writer owns all mutations of the search indices: lifecycle operations and
// batched document upserts. Every document is written under its own entity
// id, so replaying a batch produces the same index state.
type Writer struct {
	client *es.Client
	log    logger.Logger
	policy retry.Policy
}

// NewWriter creates an index writer. The retry policy is applied around
// each whole bulk call.
func NewWriter(client *es.Client, policy retry.Policy, log logger.Logger) *Writer {
	return &Writer{client: client, log: log, policy: policy}
}

// IndexExists reports whether the index exists.
func (w *Writer) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := w.client.Indices.Exists([]string{name}, w.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("check index %q existence: %w", name, err)
	}
	defer res.Body.Close()

	if isNotFound(res.StatusCode) {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("error checking index %q existence: %s", name, res.String())
	}
	return true, nil
}

// EnsureIndex creates the index with the given settings and mappings if it
// does not exist. An existing index is left untouched.
func (w *Writer) EnsureIndex(ctx context.Context, name string, schema map[string]any) error {
	exists, err := w.IndexExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		w.log.Debug("index already exists", logger.String("index", name))
		return nil
	}

	body, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema for index %q: %w", name, err)
	}

	res, err := w.client.Indices.Create(name,
		w.client.Indices.Create.WithBody(bytes.NewReader(body)),
		w.client.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %q: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error creating index %q: %s", name, string(raw))
	}

	w.log.Info("index created", logger.String("index", name))
	return nil
}

// DropIndex deletes the index if it exists and reports whether a deletion
// occurred.
func (w *Writer) DropIndex(ctx context.Context, name string) (bool, error) {
	exists, err := w.IndexExists(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	res, err := w.client.Indices.Delete([]string{name}, w.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("delete index %q: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return false, fmt.Errorf("error deleting index %q: %s", name, string(raw))
	}

	w.log.Info("index dropped", logger.String("index", name))
	return true, nil
}

// BulkUpsert writes the documents to the index in one bulk request, each
// under its own id. Individual document failures are logged and surfaced as
// a single batch-level error; the whole call is retried under the writer's
// policy before that error propagates.
func (w *Writer) BulkUpsert(ctx context.Context, name string, docs []domain.DocumentID) error {
	if len(docs) == 0 {
		return nil
	}

	body, err := encodeBulk(name, docs)
	if err != nil {
		return err
	}

	return retry.Do(ctx, w.policy, func() error {
		return w.bulkOnce(ctx, name, body, len(docs))
	})
}

func encodeBulk(name string, docs []domain.DocumentID) ([]byte, error) {
	var buf bytes.Buffer
	for _, doc := range docs {
		meta := map[string]any{
			"index": map[string]any{
				"_index": name,
				"_id":    doc.DocID(),
			},
		}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return nil, fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encode bulk document: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// bulkResponse is the subset of the bulk API response needed for per-item
// error reporting.
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

func (w *Writer) bulkOnce(ctx context.Context, name string, body []byte, count int) error {
	res, err := w.client.Bulk(bytes.NewReader(body), w.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request to %q: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("bulk request to %q failed: %s", name, string(raw))
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}

	if !parsed.Errors {
		w.log.Debug("bulk upsert succeeded",
			logger.String("index", name),
			logger.Int("documents", count))
		return nil
	}

	failed := 0
	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Error == nil {
				continue
			}
			failed++
			w.log.Error("document rejected by index",
				logger.String("index", name),
				logger.String("doc_id", result.ID),
				logger.Int("status", result.Status),
				logger.String("type", result.Error.Type),
				logger.String("reason", result.Error.Reason))
		}
	}
	return fmt.Errorf("bulk upsert to %q: %d of %d documents failed", name, failed, count)
}
