package diagnostics

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/bryanwahyu/mealsense/internal/application"
	domain "github.com/bryanwahyu/mealsense/internal/domain/diagnostics"
)

// Service runs the credential diagnostics. It holds no per-run state and is safe
// for concurrent use.
type Service struct {
	Clock application.Clock
	Log   *zap.Logger
	// Production hides stack traces from initialization failures.
	Production bool
}

func NewService(clock application.Clock, log *zap.Logger, production bool) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Clock: clock, Log: log, Production: production}
}

// Run executes environment, key-format and initialization checks in order.
// It never fails; every problem is reported inside the returned report.
func (s *Service) Run(ctx context.Context, snap domain.ConfigSnapshot, initializer domain.Initializer) *domain.Report {
	report := domain.NewReport(s.Clock.Now())

	report.Checks.EnvironmentVariables = checkEnvironment(snap)
	report.Checks.PrivateKeyValidation = checkKeyFormat(snap)

	gate := domain.Gate{
		Environment: report.Checks.EnvironmentVariables.Status,
		KeyFormat:   report.Checks.PrivateKeyValidation.Status,
	}
	if skipped, ok := gate.Skip(); ok {
		report.Checks.FirebaseInitialization = skipped
	} else {
		report.Checks.FirebaseInitialization = s.probe(ctx, snap, initializer)
	}

	status := report.Derive()
	s.Log.Info("credential diagnostics finished",
		zap.String("status", string(status)),
		zap.String("environment", string(report.Checks.EnvironmentVariables.Status)),
		zap.String("private_key", string(report.Checks.PrivateKeyValidation.Status)),
		zap.String("initialization", string(report.Checks.FirebaseInitialization.Status)),
	)
	return report
}

func checkEnvironment(snap domain.ConfigSnapshot) domain.EnvironmentCheck {
	details := domain.EnvironmentDetails{Found: []string{}, Missing: []string{}}
	for _, name := range domain.RequiredVariables {
		if snap.Has(name) {
			details.Found = append(details.Found, name)
		} else {
			details.Missing = append(details.Missing, name)
		}
	}

	// Only these three gate success; the list above is informational.
	_, details.HasProjectID = snap.ProjectID()
	details.HasPrivateKey = snap.HasPrivateKey()
	_, details.HasClientEmail = snap.ClientEmail()

	status := domain.StatusError
	if details.HasProjectID && details.HasPrivateKey && details.HasClientEmail {
		status = domain.StatusSuccess
	}
	return domain.EnvironmentCheck{Status: status, Details: details}
}

func checkKeyFormat(snap domain.ConfigSnapshot) domain.KeyFormatCheck {
	key, raw, err := domain.ResolvePrivateKey(snap)
	if err != nil {
		details := domain.KeyFormatDetails{Error: err.Error()}
		if raw != "" {
			details.Preview = domain.Preview(raw)
		}
		return domain.KeyFormatCheck{Status: domain.StatusError, Details: details}
	}

	if err := domain.ValidatePEM(key.PEM); err != nil {
		shape := domain.InspectPEM(key.PEM)
		return domain.KeyFormatCheck{
			Status: domain.StatusError,
			Details: domain.KeyFormatDetails{
				Source:         key.Source,
				HasBeginMarker: shape.HasBeginMarker,
				HasEndMarker:   shape.HasEndMarker,
				HasNewlines:    shape.HasNewlines,
				Error:          err.Error(),
				Preview:        domain.Preview(key.Raw),
			},
		}
	}

	return domain.KeyFormatCheck{
		Status: domain.StatusSuccess,
		Details: domain.KeyFormatDetails{
			Source:         key.Source,
			Length:         len(key.PEM),
			HasBeginMarker: true,
			HasEndMarker:   true,
			HasNewlines:    true,
		},
	}
}

// probe calls the initializer and times it. Panics are reported like errors.
func (s *Service) probe(ctx context.Context, snap domain.ConfigSnapshot, initializer domain.Initializer) (res domain.InitializationCheck) {
	start := s.Clock.Now()
	projectID, _ := snap.ProjectID()

	defer func() {
		if r := recover(); r != nil {
			res = s.initFailure(fmt.Errorf("%w: panic: %v", domain.ErrInitializationFailure, r), string(debug.Stack()))
		}
	}()

	if initializer == nil {
		return s.initFailure(fmt.Errorf("%w: no initializer configured", domain.ErrInitializationFailure), "")
	}

	app, err := initializer.Initialize(ctx)
	elapsed := s.Clock.Now().Sub(start).Milliseconds()
	if err != nil {
		return s.initFailure(fmt.Errorf("%w: %w", domain.ErrInitializationFailure, err), stackOf(err))
	}

	name := ""
	if app != nil {
		name = app.Name()
	}
	return domain.InitializationCheck{
		Status: domain.StatusSuccess,
		Details: domain.InitializationDetails{
			Initialized: true,
			AppName:     name,
			ProjectID:   projectID,
			ElapsedMS:   elapsed,
		},
	}
}

func (s *Service) initFailure(err error, stack string) domain.InitializationCheck {
	s.Log.Warn("credential initialization failed", zap.Error(err))
	details := domain.InitializationDetails{Error: err.Error()}
	if !s.Production {
		details.Stack = stack
	}
	return domain.InitializationCheck{Status: domain.StatusError, Details: details}
}

// stackOf prefers a stack carried by err (printed with %+v) and falls back to the
// current goroutine's stack.
func stackOf(err error) string {
	if v := fmt.Sprintf("%+v", err); v != err.Error() {
		return v
	}
	return string(debug.Stack())
}
