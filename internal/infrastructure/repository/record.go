package repository

import (
	"context"
	"errors"
	"strconv"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/cocodedk/publix"
	"github.com/cocodedk/publix/internal/domain"
	"github.com/cocodedk/publix/internal/infrastructure/database/models"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// GetOrCreate upserts the leak record keyed by its external system id.
// Existing records are returned untouched: metadata is immutable after
// creation. Creation races on the unique index are absorbed the same way
// domain creation races are.
func (r *RecordRepository) GetOrCreate(ctx context.Context, rec publix.ProviderRecord) (domain.Record, bool, error) {
	read := func() (models.LeakRecord, error) {
		var m models.LeakRecord
		err := r.db.WithContext(ctx).
			Where("system_id = ?", rec.SystemID).
			Take(&m).Error
		return m, err
	}

	attempt := func() (models.LeakRecord, bool, error) {
		var m models.LeakRecord
		created := false
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			err := tx.Where("system_id = ?", rec.SystemID).Take(&m).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			m = models.LeakRecord{
				SystemID:    rec.SystemID,
				Owner:       rec.Owner,
				StorageID:   rec.StorageID,
				InStore:     rec.InStore,
				Size:        rec.Size,
				AccessLevel: rec.AccessLevel,
				Type:        rec.Type,
				Media:       rec.Media,
				Added:       rec.Added,
				Date:        rec.Date,
				Name:        rec.Name,
				Description: rec.Description,
				XScore:      rec.XScore,
				Simhash:     strconv.FormatUint(rec.Simhash, 10),
				Bucket:      rec.Bucket,
			}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			created = true
			return nil
		})
		return m, created, err
	}

	m, created, err := getOrCreateWithRetry(attempt, read)
	if err != nil {
		return domain.Record{}, false, err
	}
	return toDomainRecord(m), created, nil
}

// AddChildren persists the relation and tag sub-collections of a freshly
// created record. Idempotent: re-running a record does not duplicate them.
func (r *RecordRepository) AddChildren(ctx context.Context, recordID uint, relations []publix.ProviderRelation, tags []publix.ProviderTag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rel := range relations {
			row := models.Relation{
				LeakRecordID: recordID,
				Target:       rel.Target,
				Relation:     rel.Relation,
			}
			if err := tx.Where(row).FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}
		for _, tag := range tags {
			row := models.Tag{
				LeakRecordID: recordID,
				ClassField:   tag.Class,
				ClassLabel:   tag.ClassLabel,
				Value:        tag.Value,
				ValueLabel:   tag.ValueLabel,
			}
			if err := tx.Where(row).FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(err, "record children insert failed")
	}
	return nil
}

// GetBySystemID fetches one record for the REST surface.
func (r *RecordRepository) GetBySystemID(ctx context.Context, systemID string) (domain.Record, error) {
	var m models.LeakRecord
	err := r.db.WithContext(ctx).
		Where("system_id = ?", systemID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, pkgerrors.Wrap(err, "record lookup failed")
	}

	rec := toDomainRecord(m)
	err = r.db.WithContext(ctx).
		Model(&models.CredentialLine{}).
		Where("leak_record_id = ?", m.ID).
		Count(&rec.LineCount).Error
	if err != nil {
		return domain.Record{}, pkgerrors.Wrap(err, "line count failed")
	}

	return rec, nil
}

// Purge deletes a record; the storage engine cascades to relations, tags
// and credential lines.
func (r *RecordRepository) Purge(ctx context.Context, systemID string) error {
	res := r.db.WithContext(ctx).
		Where("system_id = ?", systemID).
		Delete(&models.LeakRecord{})
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "purge failed")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDomainRecord(m models.LeakRecord) domain.Record {
	return domain.Record{
		ID:       m.ID,
		SystemID: m.SystemID,
		Name:     m.Name,
		Bucket:   m.Bucket,
		Size:     m.Size,
		XScore:   m.XScore,
		Added:    m.Added,
		Date:     m.Date,
	}
}
