package domain

// ParsedLine is one accepted credential line before encryption. Plaintext
// fields live only for the duration of the encrypting write.
type ParsedLine struct {
	Raw      string
	Email    string
	Password string
	Domain   string
	TLD      string
}

// LineOutcome is the result of pushing one raw line through the parser.
// Either Line is set (accepted) or Reason is (rejected).
type LineOutcome struct {
	Line   *ParsedLine
	Reason string
}

func Accepted(line ParsedLine) LineOutcome {
	return LineOutcome{Line: &line}
}

func Rejected(reason string) LineOutcome {
	return LineOutcome{Reason: reason}
}

// IngestReport counts per-record and per-line outcomes of one run.
type IngestReport struct {
	RecordsFetched int `json:"records_fetched"`
	RecordsCreated int `json:"records_created"`
	RecordsSkipped int `json:"records_skipped"`
	RecordsFailed  int `json:"records_failed"`
	LinesAccepted  int `json:"lines_accepted"`
	LinesRejected  int `json:"lines_rejected"`
	LinesPersisted int `json:"lines_persisted"`
}
