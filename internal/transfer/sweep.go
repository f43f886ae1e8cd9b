package transfer

import (
	"context"

	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/storage"
)

// SweepReport summarizes one expiry sweep.
type SweepReport struct {
	Expired        int
	Swept          []string
	Failed         map[string]error
	RecordsDeleted int64
}

// Sweep deletes the blobs of every transfer that expired before now, then
// their records.
//
// By default the first blob deletion failure aborts the sweep with no record
// deleted, so the next run retries everything. With IsolateSweepFailures each
// transfer is attempted and only the fully cleaned ones lose their record.
func (m *Manager) Sweep(ctx context.Context) (*SweepReport, error) {
	cutoff := m.now()
	report := &SweepReport{Failed: make(map[string]error)}

	expired, err := m.transfers.ListExpired(ctx, cutoff)
	if err != nil {
		return report, storeErr("list expired transfers", err)
	}
	report.Expired = len(expired)
	if len(expired) == 0 {
		return report, nil
	}

	for _, t := range expired {
		if err := m.blobs.DeletePrefix(ctx, storage.Prefix(t.Code)); err != nil {
			serr := storeErr("delete files of "+t.Code, err)
			if !m.opts.IsolateSweepFailures {
				return report, serr
			}
			m.log.Warn("sweep could not delete files", zap.String("code", t.Code), zap.Error(err))
			report.Failed[t.Code] = serr
			continue
		}
		report.Swept = append(report.Swept, t.Code)
	}

	if len(report.Failed) > 0 {
		report.RecordsDeleted, err = m.transfers.DeleteByCodes(ctx, report.Swept)
	} else {
		report.RecordsDeleted, err = m.transfers.DeleteExpired(ctx, cutoff)
	}
	if err != nil {
		return report, storeErr("delete expired transfers", err)
	}

	keys := make([]string, 0, len(report.Swept))
	for _, code := range report.Swept {
		keys = append(keys, transferCacheKey(code))
	}
	if err := m.cache.Delete(ctx, keys...); err != nil {
		m.log.Warn("could not evict swept transfers from cache", zap.Error(err))
	}

	m.log.Info("sweep finished",
		zap.Int("expired", report.Expired),
		zap.Int("swept", len(report.Swept)),
		zap.Int("failed", len(report.Failed)),
		zap.Int64("records_deleted", report.RecordsDeleted))
	return report, nil
}
