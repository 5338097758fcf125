package publix

import (
	"time"
)

// ProviderRecord is one search hit as the breach-data provider returns it.
// Nested relation/tag collections are split off into their own types during
// decode; everything else is scalar metadata.
type ProviderRecord struct {
	SystemID    string    `json:"systemid"`
	Owner       string    `json:"owner"`
	StorageID   string    `json:"storageid"`
	InStore     bool      `json:"instore"`
	Size        int64     `json:"size"`
	AccessLevel int       `json:"accesslevel"`
	Type        int       `json:"type"`
	Media       int       `json:"media"`
	Added       time.Time `json:"added"`
	Date        time.Time `json:"date"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	XScore      int       `json:"xscore"`
	Simhash     uint64    `json:"simhash"`
	Bucket      string    `json:"bucket"`

	Relations []ProviderRelation `json:"relations"`
	Tags      []ProviderTag      `json:"tagsh"`
}

// ProviderRelation links a record to another provider-side document.
type ProviderRelation struct {
	Target   string `json:"target"`
	Relation int    `json:"relation"`
}

// ProviderTag classifies a record. The wire field "class" collides with a
// reserved word in the storage layer and is persisted as class_field; the
// rename happens here, once, at the API boundary.
type ProviderTag struct {
	Class      int    `json:"class"`
	ClassLabel string `json:"classh"`
	Value      string `json:"value"`
	ValueLabel string `json:"valueh"`
}

// SearchResponse is the envelope of a provider search call.
type SearchResponse struct {
	Records []ProviderRecord `json:"records"`
}

// RecordMeta is the subset of leak-record metadata exposed to search callers.
type RecordMeta struct {
	SystemID string    `json:"systemid"`
	Name     string    `json:"name"`
	Bucket   string    `json:"bucket"`
	Added    time.Time `json:"added"`
}

// SearchHit is one decrypted credential line. Decryption happens only at the
// search boundary; these values are never persisted.
type SearchHit struct {
	Line     string     `json:"line"`
	Email    string     `json:"email"`
	Password string     `json:"password,omitempty"`
	Record   RecordMeta `json:"record"`
}

// Ingest progress event types.
const (
	EventRecordStarted = "record.started"
	EventRecordSkipped = "record.skipped"
	EventRecordDone    = "record.done"
	EventRecordFailed  = "record.failed"
)

// Event is published while an ingestion run progresses, one per record
// transition, and streamed to realtime subscribers.
type Event struct {
	Type      string    `json:"type"`
	SystemID  string    `json:"systemid"`
	Name      string    `json:"name,omitempty"`
	Accepted  int       `json:"accepted,omitempty"`
	Rejected  int       `json:"rejected,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
