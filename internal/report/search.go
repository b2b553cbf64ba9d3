// internal/report/search.go
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dialog-analyzer/internal/common/database"
	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

// IssueIndexer ships validation issues to Elasticsearch so operators
// can search defects across runs.
type IssueIndexer struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewIssueIndexer(es *database.ElasticsearchClient, index string, log logger.Logger) *IssueIndexer {
	return &IssueIndexer{es: es, index: index, logger: log}
}

type issueDocument struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Rule        string    `json:"rule"`
	Severity    string    `json:"severity"`
	IntentIDs   []string  `json:"intent_ids,omitempty"`
	Message     string    `json:"message"`
}

// IndexIssues writes one document per validation issue. Document IDs
// are deterministic per run so re-indexing a run overwrites instead of
// duplicating.
func (x *IssueIndexer) IndexIssues(ctx context.Context, result *models.Result) error {
	if result.Validation == nil {
		return nil
	}
	for i, issue := range result.Validation.Issues {
		doc := issueDocument{
			RunID:       result.RunID,
			GeneratedAt: result.GeneratedAt,
			Rule:        issue.Rule,
			Severity:    string(issue.Severity),
			IntentIDs:   issue.IntentIDs,
			Message:     issue.Message,
		}
		body, err := json.Marshal(doc)
		if err != nil {
			return apperrors.NewIndexWriteFailedError(err)
		}
		docID := fmt.Sprintf("%s-%d", result.RunID, i)
		if err := x.es.Index(ctx, x.index, docID, string(body)); err != nil {
			return apperrors.NewIndexWriteFailedError(err)
		}
	}
	x.logger.Info("validation issues indexed", map[string]interface{}{
		"index":  x.index,
		"run_id": result.RunID,
		"count":  len(result.Validation.Issues),
	})
	return nil
}
