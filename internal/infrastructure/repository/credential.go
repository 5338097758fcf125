package repository

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/cocodedk/publix/internal/domain"
	"github.com/cocodedk/publix/internal/infrastructure/database/models"
)

type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Insert persists one encrypted credential line. Lines carry no external
// unique key; inserts never conflict and need no coordination beyond the
// foreign keys the storage engine already checks.
func (r *CredentialRepository) Insert(ctx context.Context, line domain.EncryptedLine) error {
	row := models.CredentialLine{
		LeakRecordID: line.RecordID,
		DomainID:     line.DomainID,
		Line:         line.Line,
		Email:        line.Email,
		Password:     line.Password,
		EmailHash:    line.EmailHash,
	}
	if line.PasswordHash != "" {
		row.PasswordHash = &line.PasswordHash
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return pkgerrors.Wrap(err, "credential line insert failed")
	}
	return nil
}

// SearchByEmailHash filters stored lines by equality on the email blind
// index, optionally scoped to one leak record. An empty hash matches
// nothing; a wildcard here would defeat the point of the index.
func (r *CredentialRepository) SearchByEmailHash(ctx context.Context, hash string, recordID *uint) ([]domain.EncryptedLine, error) {
	return r.searchByHash(ctx, "email_hash", hash, recordID)
}

// SearchByPasswordHash is symmetric to SearchByEmailHash on the password
// blind index.
func (r *CredentialRepository) SearchByPasswordHash(ctx context.Context, hash string, recordID *uint) ([]domain.EncryptedLine, error) {
	return r.searchByHash(ctx, "password_hash", hash, recordID)
}

func (r *CredentialRepository) searchByHash(ctx context.Context, column, hash string, recordID *uint) ([]domain.EncryptedLine, error) {
	if hash == "" {
		return nil, nil
	}

	query := r.db.WithContext(ctx).
		Preload("LeakRecord").
		Where(column+" = ?", hash)
	if recordID != nil {
		query = query.Where("leak_record_id = ?", *recordID)
	}

	var rows []models.CredentialLine
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "blind index search failed")
	}
	return toDomainLines(rows), nil
}

// FindDomain looks up a domain row by its full name.
func (r *CredentialRepository) FindDomain(ctx context.Context, name string) (domain.Domain, bool, error) {
	var d models.Domain
	err := r.db.WithContext(ctx).Where("name = ?", name).Take(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Domain{}, false, nil
	}
	if err != nil {
		return domain.Domain{}, false, pkgerrors.Wrap(err, "domain lookup failed")
	}
	return domain.Domain{ID: d.ID, Name: d.Name, TLDID: d.TLDID}, true, nil
}

// DomainsUnderTLD expands a TLD to all registered domains beneath it.
func (r *CredentialRepository) DomainsUnderTLD(ctx context.Context, tldName string) ([]domain.Domain, error) {
	var rows []models.Domain
	err := r.db.WithContext(ctx).
		Joins("JOIN tlds ON tlds.id = domains.tld_id").
		Where("tlds.name = ?", tldName).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "tld expansion failed")
	}

	domains := make([]domain.Domain, 0, len(rows))
	for _, d := range rows {
		domains = append(domains, domain.Domain{ID: d.ID, Name: d.Name, TLDID: d.TLDID})
	}
	return domains, nil
}

// LinesForDomains loads every credential line referencing the given
// domains, parent records included.
func (r *CredentialRepository) LinesForDomains(ctx context.Context, domainIDs []uint) ([]domain.EncryptedLine, error) {
	if len(domainIDs) == 0 {
		return nil, nil
	}

	var rows []models.CredentialLine
	err := r.db.WithContext(ctx).
		Preload("LeakRecord").
		Where("domain_id IN (?)", domainIDs).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "domain line lookup failed")
	}
	return toDomainLines(rows), nil
}

func toDomainLines(rows []models.CredentialLine) []domain.EncryptedLine {
	lines := make([]domain.EncryptedLine, 0, len(rows))
	for _, row := range rows {
		line := domain.EncryptedLine{
			ID:        row.ID,
			RecordID:  row.LeakRecordID,
			DomainID:  row.DomainID,
			Line:      row.Line,
			Email:     row.Email,
			Password:  row.Password,
			EmailHash: row.EmailHash,
			Record:    toDomainRecord(row.LeakRecord),
		}
		if row.PasswordHash != nil {
			line.PasswordHash = *row.PasswordHash
		}
		lines = append(lines, line)
	}
	return lines
}
