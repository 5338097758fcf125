package usecase

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/cocodedk/publix"
	"github.com/cocodedk/publix/internal/domain"
)

var tracer = otel.Tracer("usecase")

// ProviderGateway reaches the external breach-data provider. Both calls are
// slow, rate-limited and fallible; failures arrive as domain.ProviderError.
type ProviderGateway interface {
	Search(ctx context.Context, term string, maxResults int, buckets []string) ([]publix.ProviderRecord, error)
	FetchContent(ctx context.Context, media int, storageID, bucket string) (string, error)
	FetchTLDNames(ctx context.Context) ([]string, error)
}

// RecordRepository persists leak-record metadata and children.
type RecordRepository interface {
	GetOrCreate(ctx context.Context, rec publix.ProviderRecord) (domain.Record, bool, error)
	AddChildren(ctx context.Context, recordID uint, relations []publix.ProviderRelation, tags []publix.ProviderTag) error
	GetBySystemID(ctx context.Context, systemID string) (domain.Record, error)
	Purge(ctx context.Context, systemID string) error
}

// RegistryRepository owns the shared TLD/Domain registry.
type RegistryRepository interface {
	SeedTLDs(ctx context.Context, names []string) error
	ResolveTLD(ctx context.Context, name string) (domain.TLD, error)
	GetOrCreateDomain(ctx context.Context, name string, tldID uint) (domain.Domain, bool, error)
}

// CredentialRepository persists and queries encrypted credential lines.
type CredentialRepository interface {
	Insert(ctx context.Context, line domain.EncryptedLine) error
	SearchByEmailHash(ctx context.Context, hash string, recordID *uint) ([]domain.EncryptedLine, error)
	SearchByPasswordHash(ctx context.Context, hash string, recordID *uint) ([]domain.EncryptedLine, error)
	FindDomain(ctx context.Context, name string) (domain.Domain, bool, error)
	DomainsUnderTLD(ctx context.Context, tldName string) ([]domain.Domain, error)
	LinesForDomains(ctx context.Context, domainIDs []uint) ([]domain.EncryptedLine, error)
}

// ProgressPublisher fans ingest progress events out to subscribers.
type ProgressPublisher interface {
	Publish(ctx context.Context, event publix.Event) error
}
