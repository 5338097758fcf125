package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cocodedk/publix"
	"github.com/cocodedk/publix/client"
	"github.com/cocodedk/publix/internal/domain"
)

const tldListURL = "https://data.iana.org/TLD/tlds-alpha-by-domain.txt"

// ProviderGateway adapts the breach-data client to the ingestion ports and
// folds transport failures into the domain error taxonomy.
type ProviderGateway struct {
	client  *client.Client
	http    *http.Client
	tldList string
}

func NewProviderGateway(cl *client.Client) *ProviderGateway {
	return &ProviderGateway{
		client:  cl,
		http:    &http.Client{Timeout: 30 * time.Second},
		tldList: tldListURL,
	}
}

func (g *ProviderGateway) Search(ctx context.Context, term string, maxResults int, buckets []string) ([]publix.ProviderRecord, error) {
	resp, err := g.client.Search(ctx, term, maxResults, buckets)
	if err != nil {
		return nil, domain.ProviderError{Op: "search", Err: err}
	}
	return resp.Records, nil
}

func (g *ProviderGateway) FetchContent(ctx context.Context, media int, storageID, bucket string) (string, error) {
	content, err := g.client.FetchContent(ctx, media, storageID, bucket)
	if err != nil {
		return "", domain.ProviderError{Op: "fetch content", Err: err}
	}
	return content, nil
}

// FetchTLDNames downloads the public IANA TLD list for the registry seed.
// The first line of the file is a comment; TLDs come uppercased and are
// stored lowercase.
func (g *ProviderGateway) FetchTLDNames(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.tldList, nil)
	if err != nil {
		return nil, domain.ProviderError{Op: "tld list", Err: err}
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, domain.ProviderError{Op: "tld list", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ProviderError{Op: "tld list", Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ProviderError{Op: "tld list", Err: err}
	}

	lines := strings.Split(string(raw), "\n")
	names := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		names = append(names, strings.ToLower(line))
	}
	return names, nil
}
