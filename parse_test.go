package publix

import (
	"testing"
)

func TestSplitCredentialFirstSeparatorOnly(t *testing.T) {
	email, password, err := SplitCredential("alice@example.com:Secr:et123")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if email != "alice@example.com" {
		t.Fatalf("expected email alice@example.com got %s", email)
	}
	if password != "Secr:et123" {
		t.Fatalf("expected password Secr:et123 got %s", password)
	}
}

func TestSplitCredentialAlternateSeparators(t *testing.T) {
	cases := map[string][2]string{
		"bob@example.com,hunter2":  {"bob@example.com", "hunter2"},
		"bob@example.com;hunter2":  {"bob@example.com", "hunter2"},
		"bob@example.com: spaced ": {"bob@example.com", "spaced"},
	}
	for line, want := range cases {
		email, password, err := SplitCredential(line)
		if err != nil {
			t.Fatalf("split %q failed: %v", line, err)
		}
		if email != want[0] || password != want[1] {
			t.Fatalf("split %q got (%s, %s)", line, email, password)
		}
	}
}

func TestSplitCredentialNoSeparator(t *testing.T) {
	if _, _, err := SplitCredential("no separator here"); err == nil {
		t.Fatalf("expected error for line without separator")
	}
	if _, _, err := SplitCredential(""); err == nil {
		t.Fatalf("expected error for empty line")
	}
}

func TestExtractDomainTLD(t *testing.T) {
	domain, tld, err := ExtractDomainTLD("alice@example.com")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if domain != "example.com" || tld != "com" {
		t.Fatalf("got (%s, %s)", domain, tld)
	}
}

func TestExtractDomainTLDSanitizes(t *testing.T) {
	domain, tld, err := ExtractDomainTLD(`"alice+spam"@ex ample.co.uk`)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if domain != "example.co.uk" {
		t.Fatalf("expected example.co.uk got %s", domain)
	}
	if tld != "uk" {
		t.Fatalf("expected uk got %s", tld)
	}
}

func TestExtractDomainTLDRejectsNonEmail(t *testing.T) {
	if _, _, err := ExtractDomainTLD("notanemail"); err == nil {
		t.Fatalf("expected error for value without @ and .")
	}
	if _, _, err := ExtractDomainTLD("foo@bar"); err == nil {
		t.Fatalf("expected error for value without dot")
	}
}

func TestStripNonAlpha(t *testing.T) {
	if got := StripNonAlpha("com2"); got != "com" {
		t.Fatalf("expected com got %s", got)
	}
	if got := StripNonAlpha("co-uk."); got != "couk" {
		t.Fatalf("expected couk got %s", got)
	}
}

func TestCanonicalTerm(t *testing.T) {
	if got := CanonicalTerm("  Example.COM "); got != "example.com" {
		t.Fatalf("expected example.com got %s", got)
	}
}
