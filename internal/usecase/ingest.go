package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/cocodedk/publix"
	"github.com/cocodedk/publix/internal/crypto"
	"github.com/cocodedk/publix/internal/domain"
)

// IngestOptions tunes one ingestion campaign against the provider.
type IngestOptions struct {
	MaxResults    int
	Buckets       []string
	SearchDelay   time.Duration
	FetchDelay    time.Duration
	MaxLineLength int
}

// IngestUsecase drives the pipeline: search, dedup-check, metadata persist,
// rate-limited content fetch, parse, encrypt, persist. Line failures are
// contained to the line, provider failures to the record; a run only aborts
// on cancellation or a genuine storage anomaly.
type IngestUsecase struct {
	provider    ProviderGateway
	records     RecordRepository
	registry    RegistryRepository
	credentials CredentialRepository
	encryptor   *crypto.Encryptor
	signal      ProgressPublisher
	indexSalt   string
	opts        IngestOptions
}

func NewIngestUsecase(
	provider ProviderGateway,
	records RecordRepository,
	registry RegistryRepository,
	credentials CredentialRepository,
	encryptor *crypto.Encryptor,
	signal ProgressPublisher,
	indexSalt string,
	opts IngestOptions,
) *IngestUsecase {
	return &IngestUsecase{
		provider:    provider,
		records:     records,
		registry:    registry,
		credentials: credentials,
		encryptor:   encryptor,
		signal:      signal,
		indexSalt:   indexSalt,
		opts:        opts,
	}
}

// Run executes one ingestion campaign for a search term.
func (uc *IngestUsecase) Run(ctx context.Context, term string) (domain.IngestReport, error) {
	ctx, span := tracer.Start(ctx, "Ingest.Run")
	defer span.End()

	var report domain.IngestReport

	term = publix.CanonicalTerm(term)
	if term == "" {
		return report, domain.ValidationError{Reason: "empty search term"}
	}

	if _, err := uc.SeedTLDRegistry(ctx); err != nil {
		// an already-populated registry keeps working without the refresh
		slog.WarnContext(ctx, "TLD registry refresh failed",
			slog.String("error", err.Error()),
			slog.String("module", "ingest"),
		)
	}

	records, err := uc.provider.Search(ctx, term, uc.opts.MaxResults, uc.opts.Buckets)
	if err != nil {
		span.RecordError(err)
		return report, err
	}
	report.RecordsFetched = len(records)

	slog.InfoContext(ctx, "provider search finished",
		slog.String("term", term),
		slog.Int("records", len(records)),
		slog.String("module", "ingest"),
	)

	if err := uc.pause(ctx, uc.opts.SearchDelay); err != nil {
		return report, err
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		uc.publish(ctx, publix.Event{
			Type:      publix.EventRecordStarted,
			SystemID:  rec.SystemID,
			Name:      rec.Name,
			Timestamp: time.Now(),
		})

		if err := uc.processRecord(ctx, term, rec, &report); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.RecordsFailed++
			span.RecordError(err)
			slog.ErrorContext(ctx, "record failed",
				slog.String("systemid", rec.SystemID),
				slog.String("error", err.Error()),
				slog.String("module", "ingest"),
			)
			uc.publish(ctx, publix.Event{
				Type:      publix.EventRecordFailed,
				SystemID:  rec.SystemID,
				Name:      rec.Name,
				Error:     err.Error(),
				Timestamp: time.Now(),
			})
		}
	}

	return report, nil
}

func (uc *IngestUsecase) processRecord(ctx context.Context, term string, rec publix.ProviderRecord, report *domain.IngestReport) error {

	stored, created, err := uc.records.GetOrCreate(ctx, rec)
	if err != nil {
		return err
	}
	if created {
		report.RecordsCreated++
	}

	// A record seen before whose lines already answer the campaign term is
	// fully processed: skipping it saves the rate-limited content fetch and
	// keeps re-runs from duplicating lines.
	if !created {
		hits, err := uc.credentials.SearchByEmailHash(ctx, crypto.BlindIndex(term, uc.indexSalt), &stored.ID)
		if err != nil {
			return err
		}
		if len(hits) > 0 {
			report.RecordsSkipped++
			slog.InfoContext(ctx, "record already ingested",
				slog.String("systemid", rec.SystemID),
				slog.Int("hits", len(hits)),
				slog.String("module", "ingest"),
			)
			uc.publish(ctx, publix.Event{
				Type:      publix.EventRecordSkipped,
				SystemID:  rec.SystemID,
				Name:      rec.Name,
				Timestamp: time.Now(),
			})
			return nil
		}
	}

	if err := uc.records.AddChildren(ctx, stored.ID, rec.Relations, rec.Tags); err != nil {
		return err
	}

	content, err := uc.provider.FetchContent(ctx, rec.Media, rec.StorageID, rec.Bucket)
	if err != nil {
		return err
	}

	if err := uc.pause(ctx, uc.opts.FetchDelay); err != nil {
		return err
	}

	accepted, rejected, persisted := 0, 0, 0
	for _, outcome := range ParseLines(content, term, uc.opts.MaxLineLength) {
		if outcome.Line == nil {
			rejected++
			slog.DebugContext(ctx, "line rejected",
				slog.String("systemid", rec.SystemID),
				slog.String("reason", outcome.Reason),
				slog.String("module", "ingest"),
			)
			continue
		}
		accepted++

		err := uc.storeLine(ctx, stored.ID, *outcome.Line)
		switch {
		case err == nil:
			persisted++
		case errors.Is(err, domain.ErrUnknownTLD) || errors.Is(err, domain.ErrValidation):
			rejected++
			slog.DebugContext(ctx, "line rejected",
				slog.String("systemid", rec.SystemID),
				slog.String("reason", err.Error()),
				slog.String("module", "ingest"),
			)
		default:
			// crypto and storage anomalies are fatal to the record, never
			// silently folded into the rejection counter
			return err
		}
	}

	report.LinesAccepted += accepted
	report.LinesRejected += rejected
	report.LinesPersisted += persisted

	uc.publish(ctx, publix.Event{
		Type:      publix.EventRecordDone,
		SystemID:  rec.SystemID,
		Name:      rec.Name,
		Accepted:  persisted,
		Rejected:  rejected,
		Timestamp: time.Now(),
	})

	return nil
}

func (uc *IngestUsecase) storeLine(ctx context.Context, recordID uint, line domain.ParsedLine) error {

	tld, err := uc.registry.ResolveTLD(ctx, line.TLD)
	if err != nil {
		return err
	}

	dom, _, err := uc.registry.GetOrCreateDomain(ctx, line.Domain, tld.ID)
	if err != nil {
		return err
	}

	enc := domain.EncryptedLine{
		RecordID:  recordID,
		DomainID:  dom.ID,
		EmailHash: crypto.BlindIndex(line.Email, uc.indexSalt),
	}

	if enc.Line, err = uc.encryptor.Encrypt([]byte(line.Raw)); err != nil {
		return err
	}
	if enc.Email, err = uc.encryptor.Encrypt([]byte(line.Email)); err != nil {
		return err
	}
	if line.Password != "" {
		if enc.Password, err = uc.encryptor.Encrypt([]byte(line.Password)); err != nil {
			return err
		}
		enc.PasswordHash = crypto.BlindIndex(line.Password, uc.indexSalt)
	}

	return uc.credentials.Insert(ctx, enc)
}

// SeedTLDRegistry refreshes the registry from the public TLD list and
// returns how many names the list carried.
func (uc *IngestUsecase) SeedTLDRegistry(ctx context.Context) (int, error) {
	names, err := uc.provider.FetchTLDNames(ctx)
	if err != nil {
		return 0, err
	}
	if err := uc.registry.SeedTLDs(ctx, names); err != nil {
		return 0, pkgerrors.Wrap(err, "tld seed failed")
	}
	return len(names), nil
}

// pause is a context-aware sleep used to honor provider rate limits.
func (uc *IngestUsecase) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (uc *IngestUsecase) publish(ctx context.Context, event publix.Event) {
	if uc.signal == nil {
		return
	}
	if err := uc.signal.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "progress publish failed",
			slog.String("error", err.Error()),
			slog.String("module", "ingest"),
		)
	}
}

// ParseLines turns one raw content blob into per-line parse outcomes. Lines
// that do not mention the campaign term are dropped outright — encrypting
// unrelated noise would only bloat the store. Everything else is either
// accepted with its extracted credential tuple or rejected with a reason;
// no single bad line can abort a batch.
func ParseLines(content, term string, maxLineLength int) []domain.LineOutcome {
	var outcomes []domain.LineOutcome

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimRight(raw, "\r")
		if line == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(line), term) {
			continue
		}
		if maxLineLength > 0 && len(line) > maxLineLength {
			outcomes = append(outcomes, domain.Rejected(
				fmt.Sprintf("line exceeds %d bytes", maxLineLength)))
			continue
		}

		candidate, password, err := publix.SplitCredential(line)
		if err != nil {
			outcomes = append(outcomes, domain.Rejected(err.Error()))
			continue
		}

		if !strings.Contains(candidate, "@") || !strings.Contains(candidate, ".") {
			outcomes = append(outcomes, domain.Rejected(
				fmt.Sprintf("candidate is not an email: %q", candidate)))
			continue
		}

		email := publix.SanitizeEmail(candidate)
		domainName, tldName, err := publix.ExtractDomainTLD(email)
		if err != nil {
			outcomes = append(outcomes, domain.Rejected(err.Error()))
			continue
		}

		outcomes = append(outcomes, domain.Accepted(domain.ParsedLine{
			Raw:      line,
			Email:    email,
			Password: password,
			Domain:   domainName,
			TLD:      tldName,
		}))
	}

	return outcomes
}
