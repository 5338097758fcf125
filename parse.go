package publix

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailSanitizer = regexp.MustCompile(`[^a-zA-Z0-9@.]`)
	tldSanitizer   = regexp.MustCompile(`[^a-zA-Z0-9-]`)
	alphaOnly      = regexp.MustCompile(`[^a-zA-Z]`)
)

// CanonicalTerm normalizes a search term the way the provider expects it.
func CanonicalTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// SplitCredential splits one leak line into a candidate email and the
// remainder. Commas and semicolons count as separators; the split happens on
// the first separator only, so a password may itself contain colons.
func SplitCredential(line string) (string, string, error) {
	if line == "" {
		return "", "", fmt.Errorf("empty line")
	}

	normalized := strings.NewReplacer(",", ":", ";", ":").Replace(line)

	email, password, found := strings.Cut(normalized, ":")
	if !found {
		return "", "", fmt.Errorf("no separator in %q", line)
	}

	return email, strings.TrimSpace(password), nil
}

// SanitizeEmail strips every character outside [A-Za-z0-9@.].
func SanitizeEmail(email string) string {
	return emailSanitizer.ReplaceAllString(email, "")
}

// ExtractDomainTLD validates a candidate email and returns its domain and
// top-level domain. The email must contain both '@' and '.'; the domain is
// everything after the last '@', and the TLD is the trailing label of the
// domain with everything outside [A-Za-z0-9-] removed.
func ExtractDomainTLD(email string) (string, string, error) {
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return "", "", fmt.Errorf("not an email address: %q", email)
	}

	sanitized := SanitizeEmail(email)

	at := strings.LastIndex(sanitized, "@")
	if at < 0 || at == len(sanitized)-1 {
		return "", "", fmt.Errorf("no domain in %q", email)
	}
	domain := sanitized[at+1:]

	label := domain[strings.LastIndex(domain, ".")+1:]
	tld := tldSanitizer.ReplaceAllString(label, "")

	if domain == "" || tld == "" {
		return "", "", fmt.Errorf("empty domain or tld in %q", email)
	}

	return domain, tld, nil
}

// StripNonAlpha reduces a garbled TLD to its alphabetic core. Providers
// occasionally emit suffixed TLDs ("com2", "net."); registry lookup retries
// with this form before giving up.
func StripNonAlpha(tld string) string {
	return alphaOnly.ReplaceAllString(tld, "")
}
