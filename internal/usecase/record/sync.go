package record

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	domain "user-table-service/internal/domain/record"
	pkgerrors "user-table-service/pkg/errors"
	"user-table-service/pkg/logger"
)

var tracer = otel.Tracer("user-table-service/internal/usecase/record")

func (uc *Table) isSynced() bool {
	return uc.synced.Load()
}

// fromIdentity maps a sample identity onto a record with a random salary.
func (uc *Table) fromIdentity(id Identity) domain.Record {
	dob := id.DOB
	if len(dob) > 10 {
		dob = dob[:10]
	}
	return domain.Record{
		Name:   strings.TrimSpace(id.FirstName + " " + id.LastName),
		Email:  id.Email,
		ID:     id.UUID,
		Salary: uc.salary(),
		DOB:    dob,
	}
}

// SyncRecords merges one batch of random-user identities into the list.
// It succeeds at most once per process; later calls return ErrAlreadySynced
// without contacting the service. A failed fetch leaves the flag unset.
func (uc *Table) SyncRecords(ctx context.Context) (*SyncRecordsResponse, error) {
	ctx, span := tracer.Start(ctx, "record.SyncRecords")
	defer span.End()

	log := logger.WithContext(ctx, uc.log)

	uc.syncMu.Lock()
	defer uc.syncMu.Unlock()

	if uc.synced.Load() {
		log.Warn("users already synced")
		return nil, pkgerrors.ErrAlreadySynced
	}

	log.Info("fetching sample users", zap.Int("count", uc.batchSize))
	identities, err := uc.fetcher.FetchIdentities(ctx, uc.batchSize)
	if err != nil {
		log.Error("fetch failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, pkgerrors.NewInternalError("failed to fetch users", err)
	}

	var added, total int
	err = uc.mutate(ctx, func(records []domain.Record) ([]domain.Record, error) {
		for _, id := range identities {
			if id.UUID == "" || domain.IndexOfID(records, id.UUID) >= 0 {
				continue
			}
			records = append(records, uc.fromIdentity(id))
			added++
		}
		total = len(records)
		return records, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, err
	}

	uc.synced.Store(true)
	span.SetAttributes(
		attribute.Int("sync.fetched", len(identities)),
		attribute.Int("sync.added", added),
	)
	log.Info("users synced", zap.Int("fetched", len(identities)), zap.Int("added", added), zap.Int("total", total))

	return &SyncRecordsResponse{Fetched: len(identities), Added: added, Total: total}, nil
}
