package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cocodedk/publix/internal/crypto"
	"github.com/cocodedk/publix/internal/domain"
)

type searchFixture struct {
	credentials *fakeCredentials
	registry    *fakeRegistry
	encryptor   *crypto.Encryptor
	usecase     *SearchUsecase
}

// newSearchFixture seeds two domains under "com" and one under "net" with one
// encrypted credential line each.
func newSearchFixture(t *testing.T) *searchFixture {
	t.Helper()

	f := &searchFixture{
		registry:  newFakeRegistry("com", "net"),
		encryptor: newTestEncryptor(t),
	}
	f.credentials = &fakeCredentials{
		domains: []domain.Domain{
			{ID: 1, Name: "example.com", TLDID: 1},
			{ID: 2, Name: "other.com", TLDID: 1},
			{ID: 3, Name: "example.net", TLDID: 2},
		},
		domainTLD: map[uint]string{1: "com", 2: "com", 3: "net"},
	}
	f.usecase = NewSearchUsecase(f.credentials, f.registry, f.encryptor, testIndexSalt)

	record := domain.Record{
		ID: 1, SystemID: "r1", Name: "dump", Bucket: "leaks.public",
		Added: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	f.seedLine(t, record, 1, "alice@example.com", "hunter2")
	f.seedLine(t, record, 2, "bob@other.com", "letmein")
	f.seedLine(t, record, 3, "carol@example.net", "")

	return f
}

func (f *searchFixture) seedLine(t *testing.T, record domain.Record, domainID uint, email, password string) {
	t.Helper()

	raw := email + ":" + password
	line := domain.EncryptedLine{
		RecordID:  record.ID,
		DomainID:  domainID,
		EmailHash: crypto.BlindIndex(email, testIndexSalt),
		Record:    record,
	}

	var err error
	if line.Line, err = f.encryptor.Encrypt([]byte(raw)); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if line.Email, err = f.encryptor.Encrypt([]byte(email)); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if password != "" {
		if line.Password, err = f.encryptor.Encrypt([]byte(password)); err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		line.PasswordHash = crypto.BlindIndex(password, testIndexSalt)
	}

	if err := f.credentials.Insert(context.Background(), line); err != nil {
		t.Fatalf("Insert: %v", err)
	}
}

func TestSearchByTLD(t *testing.T) {
	f := newSearchFixture(t)

	hits, err := f.usecase.Search(context.Background(), "com")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}

	emails := map[string]bool{}
	for _, hit := range hits {
		emails[hit.Email] = true
	}
	if !emails["alice@example.com"] || !emails["bob@other.com"] {
		t.Errorf("hits = %v", emails)
	}
}

func TestSearchByDomain(t *testing.T) {
	f := newSearchFixture(t)

	hits, err := f.usecase.Search(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].Email != "alice@example.com" || hits[0].Password != "hunter2" {
		t.Errorf("hit = %+v", hits[0])
	}
	if hits[0].Record.SystemID != "r1" || hits[0].Record.Bucket != "leaks.public" {
		t.Errorf("record meta = %+v", hits[0].Record)
	}
}

func TestSearchByEmail(t *testing.T) {
	f := newSearchFixture(t)

	hits, err := f.usecase.Search(context.Background(), "Carol@Example.NET")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].Email != "carol@example.net" {
		t.Errorf("email = %q", hits[0].Email)
	}
	// a line without a stored password decrypts without one
	if hits[0].Password != "" {
		t.Errorf("password = %q, want empty", hits[0].Password)
	}
	if hits[0].Line != "carol@example.net:" {
		t.Errorf("line = %q", hits[0].Line)
	}
}

func TestSearchByPassword(t *testing.T) {
	f := newSearchFixture(t)

	hits, err := f.usecase.SearchByPassword(context.Background(), "hunter2")
	if err != nil {
		t.Fatalf("SearchByPassword: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].Email != "alice@example.com" {
		t.Errorf("email = %q", hits[0].Email)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	f := newSearchFixture(t)

	hits, err := f.usecase.Search(context.Background(), "  ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0", len(hits))
	}
}

func TestSearchUnknownQuery(t *testing.T) {
	f := newSearchFixture(t)

	hits, err := f.usecase.Search(context.Background(), "nobody@nowhere.org")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0", len(hits))
	}
}

func TestSearchRegisteredTLDWithoutDomains(t *testing.T) {
	f := newSearchFixture(t)
	f.registry.tlds["org"] = 9

	hits, err := f.usecase.Search(context.Background(), "org")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0", len(hits))
	}
}
