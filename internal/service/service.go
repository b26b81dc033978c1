// Package service contains the business logic of the booking core.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/metrics"
	"github.com/hotelmate/backend/internal/repo"
)

// decodeAll drops rows that failed to decode, logging each one with its id.
func decodeAll[T any](rows []repo.Decoded[T], collection string, log *slog.Logger, m *metrics.Metrics) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if row.Err != nil {
			log.Warn("skipping corrupt record",
				slog.String("collection", collection),
				slog.String("id", row.ID.String()),
				slog.String("error", row.Err.Error()),
			)
			m.CorruptRecord(collection)
			continue
		}
		out = append(out, row.Value)
	}
	return out
}

func orDefaultLogger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

func utcNow() time.Time { return time.Now().UTC() }

// isConflict reports whether err is an optimistic-concurrency loss worth retrying.
func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}
