package repository

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cocodedk/publix"
	"github.com/cocodedk/publix/internal/domain"
	"github.com/cocodedk/publix/internal/infrastructure/database/models"
)

const (
	createRetryAttempts = 5
	createRetryBackoff  = 100 * time.Millisecond
)

// RegistryRepository owns the shared TLD/Domain registry. Rows are created
// lazily by whichever ingestion worker sees a value first; concurrent
// creators race on the unique indexes and lose gracefully.
type RegistryRepository struct {
	db *gorm.DB
}

func NewRegistryRepository(db *gorm.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

// SeedTLDs bulk-imports TLD names, tolerating rows that already exist.
func (r *RegistryRepository) SeedTLDs(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tlds := make([]models.TLD, 0, len(names))
	for _, name := range names {
		tlds = append(tlds, models.TLD{Name: name})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&tlds, 500).Error
}

// ResolveTLD looks up a TLD by name. A miss is retried once with the
// non-alphabetic characters stripped, which handles providers emitting
// suffixed or garbled TLDs; a second miss is ErrUnknownTLD and the caller
// skips the line rather than aborting the batch.
func (r *RegistryRepository) ResolveTLD(ctx context.Context, name string) (domain.TLD, error) {
	var tld models.TLD
	err := r.db.WithContext(ctx).Where("name = ?", name).Take(&tld).Error
	if err == nil {
		return domain.TLD{ID: tld.ID, Name: tld.Name}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.TLD{}, pkgerrors.Wrap(err, "tld lookup failed")
	}

	stripped := publix.StripNonAlpha(name)
	if stripped != "" && stripped != name {
		err = r.db.WithContext(ctx).Where("name = ?", stripped).Take(&tld).Error
		if err == nil {
			return domain.TLD{ID: tld.ID, Name: tld.Name}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TLD{}, pkgerrors.Wrap(err, "tld lookup failed")
		}
	}

	return domain.TLD{}, domain.ErrUnknownTLD
}

// GetOrCreateDomain returns the Domain row for (name, tld), creating it if
// absent. Races with concurrent creators are absorbed by the bounded retry.
func (r *RegistryRepository) GetOrCreateDomain(ctx context.Context, name string, tldID uint) (domain.Domain, bool, error) {
	read := func() (models.Domain, error) {
		var d models.Domain
		err := r.db.WithContext(ctx).
			Where("name = ? AND tld_id = ?", name, tldID).
			Take(&d).Error
		return d, err
	}

	attempt := func() (models.Domain, bool, error) {
		var d models.Domain
		created := false
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			err := tx.Where("name = ? AND tld_id = ?", name, tldID).Take(&d).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			d = models.Domain{Name: name, TLDID: tldID}
			if err := tx.Create(&d).Error; err != nil {
				return err
			}
			created = true
			return nil
		})
		return d, created, err
	}

	d, created, err := getOrCreateWithRetry(attempt, read)
	if err != nil {
		return domain.Domain{}, false, err
	}
	return domain.Domain{ID: d.ID, Name: d.Name, TLDID: d.TLDID}, created, nil
}

// getOrCreateWithRetry runs an atomic get-or-create attempt, retrying a
// fixed number of times with a short pause whenever a concurrent creator
// wins the unique-constraint race. After the attempts are exhausted it falls
// back to a plain read; if even that misses, the constraint conflict was not
// an expected race and the caller gets ErrPersistence.
func getOrCreateWithRetry[T any](
	attempt func() (T, bool, error),
	read func() (T, error),
) (T, bool, error) {
	var zero T
	var lastErr error

	for i := 0; i < createRetryAttempts; i++ {
		entity, created, err := attempt()
		if err == nil {
			return entity, created, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return zero, false, pkgerrors.Wrap(err, "get-or-create failed")
		}
		lastErr = err
		if i < createRetryAttempts-1 {
			time.Sleep(createRetryBackoff)
		}
	}

	entity, err := read()
	if err == nil {
		return entity, false, nil
	}

	return zero, false, pkgerrors.Wrapf(domain.ErrPersistence,
		"constraint conflict persisted after %d attempts: %v (read: %v)",
		createRetryAttempts, lastErr, err)
}
