// Package export dumps the evaluation history to parquet files for offline
// analysis of flagging trends.
package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/marketguard/listing-sentinel/internal/history"
	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
)

// Row is one exported evaluation.
type Row struct {
	SellerID     string `parquet:"seller_id"`
	GroupName    string `parquet:"group_name"`
	Fingerprint  string `parquet:"fingerprint"`
	RiskScore    int32  `parquet:"risk_score"`
	FindingCount int32  `parquet:"finding_count"`
	Allowed      bool   `parquet:"allowed"`
	CreatedAtMS  int64  `parquet:"created_at_ms"`
}

// Result summarizes one export run.
type Result struct {
	Rows     int64
	Path     string
	Duration time.Duration
}

// Exporter streams evaluation history into a parquet file.
type Exporter struct {
	store  *history.Store
	logger *zap.Logger
}

// New creates an exporter over the given history store.
func New(store *history.Store, logger *zap.Logger) *Exporter {
	return &Exporter{store: store, logger: logger}
}

// Run exports all evaluations created at or after since to path.
func (e *Exporter) Run(ctx context.Context, path string, since time.Time) (*Result, error) {
	start := time.Now()

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Row](file)

	var rows int64
	err = e.store.Scan(ctx, since, func(rec history.Record) error {
		_, err := writer.Write([]Row{{
			SellerID:     rec.SellerID,
			GroupName:    rec.GroupName,
			Fingerprint:  rec.Fingerprint,
			RiskScore:    int32(rec.RiskScore),
			FindingCount: int32(rec.FindingCount),
			Allowed:      rec.Allowed,
			CreatedAtMS:  rec.CreatedAt.UnixMilli(),
		}})
		if err != nil {
			return fmt.Errorf("failed to write parquet row: %w", err)
		}
		rows++
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	result := &Result{
		Rows:     rows,
		Path:     path,
		Duration: time.Since(start),
	}

	e.logger.Info("History export complete",
		zap.Int64("rows", result.Rows),
		zap.String("path", result.Path),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}
