package domain

import (
	"time"
)

// Record is leak-record metadata as the rest of the system sees it.
type Record struct {
	ID        uint
	SystemID  string
	Name      string
	Bucket    string
	Size      int64
	XScore    int
	Added     time.Time
	Date      time.Time
	LineCount int64
}

// TLD is one row of the top-level-domain registry.
type TLD struct {
	ID   uint
	Name string
}

// Domain is a registered (name, tld) pair.
type Domain struct {
	ID    uint
	Name  string
	TLDID uint
}

// EncryptedLine is a credential line as stored: ciphertext plus blind-index
// digests, never plaintext. Password fields are empty when the source line
// carried none.
type EncryptedLine struct {
	ID       uint
	RecordID uint
	DomainID uint

	Line         []byte
	Email        []byte
	Password     []byte
	EmailHash    string
	PasswordHash string

	Record Record
}
