package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/core"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/ports"
)

// FeedbackStoreImpl implements FeedbackStore for PostgreSQL
type FeedbackStoreImpl struct {
	db *sqlx.DB
}

// NewFeedbackStore creates a new PostgreSQL feedback store
func NewFeedbackStore(db *sqlx.DB) ports.FeedbackStore {
	return &FeedbackStoreImpl{db: db}
}

// Append stores one correction record
func (s *FeedbackStoreImpl) Append(ctx context.Context, record learning.FeedbackRecord) error {
	samplesJSON, _ := json.Marshal(record.SampleValues)
	if record.SampleValues == nil {
		samplesJSON = []byte("[]")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback_records (
			id, column_name, original_type, corrected_type, corrected_chart_type,
			sample_values, dataset_context, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.ColumnName, record.OriginalType, record.CorrectedType,
		record.CorrectedChartType, samplesJSON, record.DatasetContext, record.CreatedAt.Time())
	return err
}

// List returns all recorded corrections, oldest first
func (s *FeedbackStoreImpl) List(ctx context.Context) ([]learning.FeedbackRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, column_name, original_type, corrected_type, corrected_chart_type,
			   sample_values, dataset_context, created_at
		FROM feedback_records
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []learning.FeedbackRecord
	for rows.Next() {
		var record learning.FeedbackRecord
		var samplesJSON []byte
		var createdAt time.Time

		err := rows.Scan(
			&record.ID, &record.ColumnName, &record.OriginalType, &record.CorrectedType,
			&record.CorrectedChartType, &samplesJSON, &record.DatasetContext, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		if len(samplesJSON) > 0 {
			json.Unmarshal(samplesJSON, &record.SampleValues)
		}
		record.CreatedAt = core.NewTimestamp(createdAt)

		records = append(records, record)
	}
	return records, rows.Err()
}
