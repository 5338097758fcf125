package usecase

import (
	"context"

	"github.com/cocodedk/publix/internal/domain"
)

// RecordUsecase exposes stored leak-record metadata to the API layer.
type RecordUsecase struct {
	records RecordRepository
}

func NewRecordUsecase(records RecordRepository) *RecordUsecase {
	return &RecordUsecase{records: records}
}

func (uc *RecordUsecase) Get(ctx context.Context, systemID string) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Record.Get")
	defer span.End()

	return uc.records.GetBySystemID(ctx, systemID)
}

// Purge removes a record and, through the storage cascade, every credential
// line ingested from it.
func (uc *RecordUsecase) Purge(ctx context.Context, systemID string) error {
	ctx, span := tracer.Start(ctx, "Record.Purge")
	defer span.End()

	return uc.records.Purge(ctx, systemID)
}
