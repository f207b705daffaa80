package advisor

import "errors"

// ErrSessionBusy is returned when a query arrives while another query holds
// the same session. The caller retries; queries are never queued, so two
// in-flight queries can never interleave memory writes.
var ErrSessionBusy = errors.New("session has a query in flight")

// ErrSessionNotFound is returned for an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

// ArtifactStatus reports the outcome of an optional side effect. Artifact
// failures never fail the query that produced them.
type ArtifactStatus string

const (
	ArtifactGenerated ArtifactStatus = "generated"
	ArtifactSkipped   ArtifactStatus = "skipped"
	ArtifactFailed    ArtifactStatus = "failed"
)

// ChartArtifact carries rendered charts, or the reason there are none.
type ChartArtifact struct {
	Status ArtifactStatus    `json:"status"`
	Charts map[string][]byte `json:"-"`
	Error  string            `json:"error,omitempty"`
}

// ReportArtifact carries the generated report path, or the reason there is
// none.
type ReportArtifact struct {
	Status ArtifactStatus `json:"status"`
	Path   string         `json:"path,omitempty"`
	Error  string         `json:"error,omitempty"`
}
