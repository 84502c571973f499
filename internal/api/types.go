package api

// SubmitResponse is returned when a command is accepted. The byte count is
// all a caller learns; whether the command resolved is not disclosed here.
type SubmitResponse struct {
	AcceptedBytes int `json:"accepted_bytes"`
}

// CatalogEntry describes one fault in the catalog.
type CatalogEntry struct {
	Label     string `json:"label"`
	Summary   string `json:"summary"`
	Signature string `json:"signature"`
}

// CatalogResponse is returned by GET /catalog.
type CatalogResponse struct {
	Faults []CatalogEntry `json:"faults"`
}

// IntentResponse is one journaled intent.
type IntentResponse struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Source    string `json:"source"`
	Principal string `json:"principal,omitempty"`
	RawLen    int    `json:"raw_len"`
	Armed     bool   `json:"armed"`
	CreatedAt string `json:"created_at"`
}

// JournalResponse is returned by GET /journal.
type JournalResponse struct {
	Intents []IntentResponse `json:"intents"`
}

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Armed         bool   `json:"armed"`
	Faults        int    `json:"faults"`
	IntentsLogged int64  `json:"intents_logged"`
}
