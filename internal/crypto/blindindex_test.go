package crypto

import (
	"testing"
)

func TestBlindIndexCaseInsensitive(t *testing.T) {
	a := BlindIndex("Alice@Example.COM", "salt")
	b := BlindIndex("alice@example.com", "salt")
	if a != b {
		t.Fatalf("case variants hashed differently: %s != %s", a, b)
	}
}

func TestBlindIndexSaltSeparation(t *testing.T) {
	a := BlindIndex("alice@example.com", "salt-one")
	b := BlindIndex("alice@example.com", "salt-two")
	if a == b {
		t.Fatalf("different salts produced the same digest")
	}
}

func TestBlindIndexShape(t *testing.T) {
	digest := BlindIndex("alice@example.com", "salt")
	if len(digest) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(digest))
	}
	if digest != BlindIndex("alice@example.com", "salt") {
		t.Fatalf("digest is not deterministic")
	}
}
