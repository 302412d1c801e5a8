package chi

import "time"

// ErrorCode is the machine-readable error kind in API responses.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeInvalidArgument  ErrorCode = "invalid_argument"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeSearchTimeout    ErrorCode = "search_timeout"
	ErrorCodeSearchFailed     ErrorCode = "search_failed"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /api/v1/searches.
type SearchRequest struct {
	// Algorithm may be empty; it is then inferred from the query and corpus kinds.
	Algorithm string   `json:"algorithm"`
	Sequence  string   `json:"sequence"`
	Corpora   []string `json:"corpora"`
	Options   string   `json:"options"`
}

// SpanResponse is a coordinate range.
type SpanResponse struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// HitResponse is one hit with its display fragment.
type HitResponse struct {
	ID          string        `json:"id"`
	SeqID       string        `json:"seq_id,omitempty"`
	Meta        string        `json:"meta"`
	Fragment    string        `json:"fragment"`
	Alignment   []string      `json:"alignment"`
	Coordinates *SpanResponse `json:"coordinates,omitempty"`
}

// QueryResponse groups hits by query.
type QueryResponse struct {
	ID       string        `json:"id"`
	Preamble []string      `json:"preamble"`
	Hits     []HitResponse `json:"hits"`
}

// LinkResponse is an anchor.
type LinkResponse struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// SearchResponse is a finished search.
type SearchResponse struct {
	ID          string          `json:"id"`
	Stored      bool            `json:"stored"`
	Algorithm   string          `json:"algorithm"`
	Corpora     []string        `json:"corpora"`
	Options     string          `json:"options,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Reference   string          `json:"reference"`
	Queries     []QueryResponse `json:"queries"`
	Summary     string          `json:"summary"`
	RetrieveAll *LinkResponse   `json:"retrieve_all,omitempty"`
}

// CorpusResponse describes a corpus.
type CorpusResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
}

// CorpusListResponse lists corpora.
type CorpusListResponse struct {
	Items []CorpusResponse `json:"items"`
}

// AlgorithmResponse describes an algorithm.
type AlgorithmResponse struct {
	Name       string `json:"name"`
	QueryKind  string `json:"query_kind"`
	TargetKind string `json:"target_kind"`
}

// AlgorithmListResponse lists algorithms.
type AlgorithmListResponse struct {
	Items []AlgorithmResponse `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
