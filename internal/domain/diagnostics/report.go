package diagnostics

import "time"

// CheckStatus is the state of a single check.
type CheckStatus string

const (
	StatusPending CheckStatus = "pending"
	StatusSuccess CheckStatus = "success"
	StatusError   CheckStatus = "error"
	StatusSkipped CheckStatus = "skipped"
)

// Overall verdict of a report.
type Health string

const (
	HealthHealthy   Health = "healthy"
	HealthUnhealthy Health = "unhealthy"
)

// SkipReason is the fixed reason attached to a skipped initialization.
const SkipReason = "Skipped due to previous errors"

type EnvironmentDetails struct {
	Found          []string `json:"found"`
	Missing        []string `json:"missing"`
	HasProjectID   bool     `json:"hasProjectId"`
	HasPrivateKey  bool     `json:"hasPrivateKey"`
	HasClientEmail bool     `json:"hasClientEmail"`
}

type EnvironmentCheck struct {
	Status  CheckStatus        `json:"status"`
	Details EnvironmentDetails `json:"details"`
}

type KeyFormatDetails struct {
	Source         KeySource `json:"source,omitempty"`
	Length         int       `json:"length,omitempty"`
	HasBeginMarker bool      `json:"hasBeginMarker"`
	HasEndMarker   bool      `json:"hasEndMarker"`
	HasNewlines    bool      `json:"hasNewlines"`
	Error          string    `json:"error,omitempty"`
	Preview        string    `json:"preview,omitempty"`
}

type KeyFormatCheck struct {
	Status  CheckStatus      `json:"status"`
	Details KeyFormatDetails `json:"details"`
}

type InitializationDetails struct {
	Initialized bool   `json:"initialized"`
	AppName     string `json:"appName,omitempty"`
	ProjectID   string `json:"projectId,omitempty"`
	ElapsedMS   int64  `json:"elapsedMs"`
	Error       string `json:"error,omitempty"`
	Stack       string `json:"stack,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type InitializationCheck struct {
	Status  CheckStatus           `json:"status"`
	Details InitializationDetails `json:"details"`
}

// Checks keeps the three results in execution order.
type Checks struct {
	EnvironmentVariables   EnvironmentCheck    `json:"environmentVariables"`
	PrivateKeyValidation   KeyFormatCheck      `json:"privateKeyValidation"`
	FirebaseInitialization InitializationCheck `json:"firebaseInitialization"`
}

// Report is the response envelope of one diagnostics run.
type Report struct {
	Status    Health    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Checks    Checks    `json:"checks"`
}

// NewReport starts a report with every check pending.
func NewReport(now time.Time) *Report {
	return &Report{
		Status:    HealthUnhealthy,
		Timestamp: now.UTC(),
		Checks: Checks{
			EnvironmentVariables:   EnvironmentCheck{Status: StatusPending, Details: EnvironmentDetails{Found: []string{}, Missing: []string{}}},
			PrivateKeyValidation:   KeyFormatCheck{Status: StatusPending},
			FirebaseInitialization: InitializationCheck{Status: StatusPending},
		},
	}
}

// Derive sets Status from the three check results.
func (r *Report) Derive() Health {
	if r.Checks.EnvironmentVariables.Status == StatusSuccess &&
		r.Checks.PrivateKeyValidation.Status == StatusSuccess &&
		r.Checks.FirebaseInitialization.Status == StatusSuccess {
		r.Status = HealthHealthy
	} else {
		r.Status = HealthUnhealthy
	}
	return r.Status
}

// Gate holds the upstream outcomes that decide whether initialization may run.
type Gate struct {
	Environment CheckStatus
	KeyFormat   CheckStatus
}

// Open reports whether both upstream checks succeeded.
func (g Gate) Open() bool {
	return g.Environment == StatusSuccess && g.KeyFormat == StatusSuccess
}

// Skip builds a skipped initialization result. It returns false when the gate is
// open, since a skip is only legal after an upstream failure.
func (g Gate) Skip() (InitializationCheck, bool) {
	if g.Open() {
		return InitializationCheck{}, false
	}
	return InitializationCheck{
		Status:  StatusSkipped,
		Details: InitializationDetails{Reason: SkipReason},
	}, true
}
