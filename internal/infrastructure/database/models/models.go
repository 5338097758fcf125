package models

import (
	"time"
)

// LeakRecord is the metadata envelope for one provider-side leak document.
// Created once per distinct SystemID, never mutated afterwards; destroyed
// only by administrative purge, which cascades to relations, tags and
// credential lines.
type LeakRecord struct {
	ID          uint      `gorm:"primaryKey"`
	SystemID    string    `gorm:"type:text;uniqueIndex;not null"`
	Owner       string    `gorm:"type:text"`
	StorageID   string    `gorm:"type:text"`
	InStore     bool      `gorm:"not null;default:false"`
	Size        int64     `gorm:"not null;default:0"`
	AccessLevel int       `gorm:"not null;default:0"`
	Type        int       `gorm:"not null;default:0"`
	Media       int       `gorm:"not null;default:0"`
	Added       time.Time `gorm:"type:timestamp with time zone"`
	Date        time.Time `gorm:"type:timestamp with time zone"`
	Name        string    `gorm:"type:text"`
	Description string    `gorm:"type:text"`
	XScore      int       `gorm:"not null;default:0"`
	Simhash     string    `gorm:"type:text"`
	Bucket      string    `gorm:"type:text;index"`
	CDate       time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`

	Relations []Relation       `gorm:"constraint:OnDelete:CASCADE;"`
	Tags      []Tag            `gorm:"constraint:OnDelete:CASCADE;"`
	Lines     []CredentialLine `gorm:"constraint:OnDelete:CASCADE;"`
}

// Relation links a leak record to another provider-side document. Created
// alongside the parent, never independently updated.
type Relation struct {
	ID           uint   `gorm:"primaryKey"`
	LeakRecordID uint   `gorm:"index;not null"`
	Target       string `gorm:"type:text"`
	Relation     int    `gorm:"not null;default:0"`
}

// Tag classifies a leak record. The provider calls the first field "class",
// a reserved word in the storage layer, so it lives in class_field here.
type Tag struct {
	ID           uint   `gorm:"primaryKey"`
	LeakRecordID uint   `gorm:"index;not null"`
	ClassField   int    `gorm:"column:class_field;not null;default:0"`
	ClassLabel   string `gorm:"type:text"`
	Value        string `gorm:"type:text"`
	ValueLabel   string `gorm:"type:text"`
}

// TLD is one row of the append-only top-level-domain registry.
type TLD struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:text;uniqueIndex;not null"`
}

// Domain is a (name, tld) pair, created lazily by whichever ingestion worker
// sees it first. The composite unique index is what creation races trip on.
type Domain struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"type:text;not null;uniqueIndex:idx_domain_name_tld"`
	TLDID uint   `gorm:"not null;uniqueIndex:idx_domain_name_tld"`
	TLD   TLD    `gorm:"foreignKey:TLDID"`
}

// CredentialLine is one parsed line of leaked credentials. Only ciphertext
// and blind-index digests are stored; the plaintext never outlives the
// encrypting write. A blind-index column is populated exactly when its
// ciphertext column is.
type CredentialLine struct {
	ID           uint       `gorm:"primaryKey"`
	LeakRecordID uint       `gorm:"index;not null"`
	LeakRecord   LeakRecord `gorm:"foreignKey:LeakRecordID"`
	DomainID     uint       `gorm:"index;not null"`
	Domain       Domain     `gorm:"foreignKey:DomainID"`

	Line         []byte  `gorm:"type:bytea;not null"`
	Email        []byte  `gorm:"type:bytea;not null"`
	EmailHash    string  `gorm:"type:char(64);index;not null"`
	Password     []byte  `gorm:"type:bytea"`
	PasswordHash *string `gorm:"type:char(64);index"`

	CDate time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
