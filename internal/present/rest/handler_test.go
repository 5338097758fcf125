package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cocodedk/publix"
	"github.com/cocodedk/publix/internal/crypto"
	"github.com/cocodedk/publix/internal/domain"
	"github.com/cocodedk/publix/internal/usecase"
)

const testIndexSalt = "handler-index-salt"

// --- mocks ---

type mockRegistryRepo struct{}

func (m *mockRegistryRepo) SeedTLDs(ctx context.Context, names []string) error { return nil }
func (m *mockRegistryRepo) ResolveTLD(ctx context.Context, name string) (domain.TLD, error) {
	return domain.TLD{}, domain.ErrUnknownTLD
}
func (m *mockRegistryRepo) GetOrCreateDomain(ctx context.Context, name string, tldID uint) (domain.Domain, bool, error) {
	return domain.Domain{}, false, nil
}

type mockCredentialRepo struct {
	lines []domain.EncryptedLine
}

func (m *mockCredentialRepo) Insert(ctx context.Context, line domain.EncryptedLine) error {
	return nil
}
func (m *mockCredentialRepo) SearchByEmailHash(ctx context.Context, hash string, recordID *uint) ([]domain.EncryptedLine, error) {
	var out []domain.EncryptedLine
	for _, line := range m.lines {
		if line.EmailHash == hash {
			out = append(out, line)
		}
	}
	return out, nil
}
func (m *mockCredentialRepo) SearchByPasswordHash(ctx context.Context, hash string, recordID *uint) ([]domain.EncryptedLine, error) {
	return nil, nil
}
func (m *mockCredentialRepo) FindDomain(ctx context.Context, name string) (domain.Domain, bool, error) {
	return domain.Domain{}, false, nil
}
func (m *mockCredentialRepo) DomainsUnderTLD(ctx context.Context, tldName string) ([]domain.Domain, error) {
	return nil, nil
}
func (m *mockCredentialRepo) LinesForDomains(ctx context.Context, domainIDs []uint) ([]domain.EncryptedLine, error) {
	return nil, nil
}

type mockRecordRepo struct {
	records map[string]domain.Record
	purged  string
}

func (m *mockRecordRepo) GetOrCreate(ctx context.Context, rec publix.ProviderRecord) (domain.Record, bool, error) {
	return domain.Record{}, false, nil
}
func (m *mockRecordRepo) AddChildren(ctx context.Context, recordID uint, relations []publix.ProviderRelation, tags []publix.ProviderTag) error {
	return nil
}
func (m *mockRecordRepo) GetBySystemID(ctx context.Context, systemID string) (domain.Record, error) {
	if rec, ok := m.records[systemID]; ok {
		return rec, nil
	}
	return domain.Record{}, domain.ErrNotFound
}
func (m *mockRecordRepo) Purge(ctx context.Context, systemID string) error {
	if _, ok := m.records[systemID]; !ok {
		return domain.ErrNotFound
	}
	m.purged = systemID
	return nil
}

// --- helpers ---

func newTestServer(t *testing.T, creds *mockCredentialRepo, records *mockRecordRepo) (*echo.Echo, *crypto.Encryptor) {
	t.Helper()

	enc, err := crypto.NewEncryptor("handler-passphrase", "handler-salt")
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}

	searchUC := usecase.NewSearchUsecase(creds, &mockRegistryRepo{}, enc, testIndexSalt)
	recordUC := usecase.NewRecordUsecase(records)

	h := NewHandler(searchUC, recordUC, nil)
	e := echo.New()
	h.RegisterRoutes(e)

	return e, enc
}

func encryptedLine(t *testing.T, enc *crypto.Encryptor, email, password string) domain.EncryptedLine {
	t.Helper()

	line := domain.EncryptedLine{
		EmailHash: crypto.BlindIndex(email, testIndexSalt),
		Record:    domain.Record{SystemID: "r1", Name: "dump", Bucket: "leaks.public"},
	}

	var err error
	if line.Line, err = enc.Encrypt([]byte(email + ":" + password)); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if line.Email, err = enc.Encrypt([]byte(email)); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if line.Password, err = enc.Encrypt([]byte(password)); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	return line
}

// --- tests ---

func TestHandleSearch(t *testing.T) {
	creds := &mockCredentialRepo{}
	e, enc := newTestServer(t, creds, &mockRecordRepo{})
	creds.lines = []domain.EncryptedLine{encryptedLine(t, enc, "alice@example.com", "hunter2")}

	req := httptest.NewRequest(http.MethodGet, "/search?q=alice%40example.com", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	var body searchResponse
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || len(body.Hits) != 1 {
		t.Fatalf("body = %+v", body)
	}
	if body.Hits[0].Email != "alice@example.com" || body.Hits[0].Password != "hunter2" {
		t.Errorf("hit = %+v", body.Hits[0])
	}
	if body.Hits[0].Record.SystemID != "r1" {
		t.Errorf("record = %+v", body.Hits[0].Record)
	}
}

func TestHandleSearchRequiresQuery(t *testing.T) {
	e, _ := newTestServer(t, &mockCredentialRepo{}, &mockRecordRepo{})

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestHandleRecordGet(t *testing.T) {
	records := &mockRecordRepo{records: map[string]domain.Record{
		"r1": {
			ID: 1, SystemID: "r1", Name: "dump", Bucket: "leaks.public",
			Added: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), LineCount: 42,
		},
	}}
	e, _ := newTestServer(t, &mockCredentialRepo{}, records)

	req := httptest.NewRequest(http.MethodGet, "/records/r1", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	var body recordResponse
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SystemID != "r1" || body.LineCount != 42 {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleRecordGetNotFound(t *testing.T) {
	e, _ := newTestServer(t, &mockCredentialRepo{}, &mockRecordRepo{})

	req := httptest.NewRequest(http.MethodGet, "/records/missing", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func TestHandleRecordPurge(t *testing.T) {
	records := &mockRecordRepo{records: map[string]domain.Record{
		"r1": {ID: 1, SystemID: "r1"},
	}}
	e, _ := newTestServer(t, &mockCredentialRepo{}, records)

	req := httptest.NewRequest(http.MethodDelete, "/records/r1", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if records.purged != "r1" {
		t.Fatalf("expected purge to be invoked")
	}
}

func TestHandleHealth(t *testing.T) {
	e, _ := newTestServer(t, &mockCredentialRepo{}, &mockRecordRepo{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
}
