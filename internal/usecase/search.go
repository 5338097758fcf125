package usecase

import (
	"context"
	"errors"

	"github.com/cocodedk/publix"
	"github.com/cocodedk/publix/internal/crypto"
	"github.com/cocodedk/publix/internal/domain"
)

// SearchUsecase answers confidential-search queries. A query is resolved in
// widening-specificity order: registered TLD first, then registered domain,
// then email blind index. Ciphertext is decrypted only here, on the way out.
type SearchUsecase struct {
	credentials CredentialRepository
	registry    RegistryRepository
	encryptor   *crypto.Encryptor
	indexSalt   string
}

func NewSearchUsecase(
	credentials CredentialRepository,
	registry RegistryRepository,
	encryptor *crypto.Encryptor,
	indexSalt string,
) *SearchUsecase {
	return &SearchUsecase{
		credentials: credentials,
		registry:    registry,
		encryptor:   encryptor,
		indexSalt:   indexSalt,
	}
}

// Search resolves a free-form query to decrypted credential lines.
func (uc *SearchUsecase) Search(ctx context.Context, query string) ([]publix.SearchHit, error) {
	ctx, span := tracer.Start(ctx, "Search.Run")
	defer span.End()

	query = publix.CanonicalTerm(query)
	if query == "" {
		return []publix.SearchHit{}, nil
	}

	tld, err := uc.registry.ResolveTLD(ctx, query)
	switch {
	case err == nil:
		return uc.linesUnderTLD(ctx, tld.Name)
	case !errors.Is(err, domain.ErrUnknownTLD):
		return nil, err
	}

	dom, found, err := uc.credentials.FindDomain(ctx, query)
	if err != nil {
		return nil, err
	}
	if found {
		lines, err := uc.credentials.LinesForDomains(ctx, []uint{dom.ID})
		if err != nil {
			return nil, err
		}
		return uc.decryptAll(lines)
	}

	lines, err := uc.credentials.SearchByEmailHash(ctx, crypto.BlindIndex(query, uc.indexSalt), nil)
	if err != nil {
		return nil, err
	}
	return uc.decryptAll(lines)
}

// SearchByPassword finds every line whose password blind index matches.
func (uc *SearchUsecase) SearchByPassword(ctx context.Context, query string) ([]publix.SearchHit, error) {
	ctx, span := tracer.Start(ctx, "Search.ByPassword")
	defer span.End()

	if query == "" {
		return []publix.SearchHit{}, nil
	}

	lines, err := uc.credentials.SearchByPasswordHash(ctx, crypto.BlindIndex(query, uc.indexSalt), nil)
	if err != nil {
		return nil, err
	}
	return uc.decryptAll(lines)
}

func (uc *SearchUsecase) linesUnderTLD(ctx context.Context, tldName string) ([]publix.SearchHit, error) {
	domains, err := uc.credentials.DomainsUnderTLD(ctx, tldName)
	if err != nil {
		return nil, err
	}
	if len(domains) == 0 {
		return []publix.SearchHit{}, nil
	}

	ids := make([]uint, 0, len(domains))
	for _, dom := range domains {
		ids = append(ids, dom.ID)
	}

	lines, err := uc.credentials.LinesForDomains(ctx, ids)
	if err != nil {
		return nil, err
	}
	return uc.decryptAll(lines)
}

func (uc *SearchUsecase) decryptAll(lines []domain.EncryptedLine) ([]publix.SearchHit, error) {
	hits := make([]publix.SearchHit, 0, len(lines))
	for _, line := range lines {
		raw, err := uc.encryptor.Decrypt(line.Line)
		if err != nil {
			return nil, err
		}
		email, err := uc.encryptor.Decrypt(line.Email)
		if err != nil {
			return nil, err
		}

		hit := publix.SearchHit{
			Line:  string(raw),
			Email: string(email),
			Record: publix.RecordMeta{
				SystemID: line.Record.SystemID,
				Name:     line.Record.Name,
				Bucket:   line.Record.Bucket,
				Added:    line.Record.Added,
			},
		}

		if len(line.Password) > 0 {
			password, err := uc.encryptor.Decrypt(line.Password)
			if err != nil {
				return nil, err
			}
			hit.Password = string(password)
		}

		hits = append(hits, hit)
	}
	return hits, nil
}
