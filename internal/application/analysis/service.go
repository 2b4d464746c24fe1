package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/mealsense/internal/application"
	domai "github.com/bryanwahyu/mealsense/internal/domain/ai"
	domain "github.com/bryanwahyu/mealsense/internal/domain/analysis"
)

// Service implements the meal analysis use-cases. Archive may be nil.
type Service struct {
	AI      domai.Client
	Repo    domain.Repository
	Archive domain.Archive
	Clock   application.Clock
	Log     *zap.Logger
}

// AnalyzeCommand is one request to analyze a meal.
type AnalyzeCommand struct {
	TenantID    string
	Description string
	ImageURL    string
}

// ValidationResult is returned by Validate.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Normalized domain.Normalized `json:"normalized"`
}

// Validate checks and normalizes an externally produced record. Only a payload
// that is not a JSON object is an error.
func (s *Service) Validate(raw []byte) (ValidationResult, error) {
	c, err := domain.ParseCandidate(raw)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidationResult{Valid: domain.IsValid(c), Normalized: domain.Normalize(c)}, nil
}

// Analyze runs the model, rejects invalid output, then stores the normalized record.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*domain.MealAnalysis, error) {
	source := domain.SourceText
	input := strings.TrimSpace(cmd.Description)
	if cmd.ImageURL != "" {
		source = domain.SourceImage
		input = cmd.ImageURL
	}
	if input == "" {
		return nil, domai.ErrNoInput
	}

	res, err := s.AI.AnalyzeMeal(ctx, domai.Request{Description: cmd.Description, ImageURL: cmd.ImageURL})
	if err != nil {
		return nil, err
	}

	c, err := domain.ParseCandidate(res.Raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAnalysis, err)
	}
	if !domain.IsValid(c) {
		s.logger().Warn("model returned an invalid analysis",
			zap.String("tenant", cmd.TenantID),
			zap.String("model", res.Model),
		)
		return nil, domain.ErrInvalidAnalysis
	}
	if c.ModelInfo == nil {
		c.ModelInfo = &domain.ModelInfo{Model: res.Model}
	}
	// The model cannot clear flags the client observed.
	c.ModelInfo.UsedFallback = c.ModelInfo.UsedFallback || res.UsedFallback
	c.ModelInfo.OCRExtracted = c.ModelInfo.OCRExtracted || res.OCRExtracted

	now := s.Clock.Now().UTC()
	a := &domain.MealAnalysis{
		ID:        domain.ID(uuid.New().String()),
		TenantID:  cmd.TenantID,
		Source:    source,
		Input:     input,
		Result:    domain.Normalize(c),
		CreatedAt: now,
	}

	if s.Archive != nil {
		key := fmt.Sprintf("%s/%s/%s.json", cmd.TenantID, now.Format("2006/01/02"), a.ID)
		url, err := s.Archive.PutJSON(ctx, key, a)
		if err != nil {
			// the archive is a copy; the row is still the source of truth
			s.logger().Warn("archive upload failed", zap.String("key", key), zap.Error(err))
		} else {
			a.ArchiveURL = url
		}
	}

	if err := s.Repo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.logger().Info("meal analyzed",
		zap.String("tenant", a.TenantID),
		zap.String("id", string(a.ID)),
		zap.String("source", string(a.Source)),
		zap.Int("nutrients", len(a.Result.Nutrients)),
		zap.Bool("used_fallback", a.Result.ModelInfo.UsedFallback),
	)
	return a, nil
}

// Get ambil 1 analysis by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.ID) (*domain.MealAnalysis, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// List returns one page of a tenant's history, newest first.
func (s *Service) List(ctx context.Context, tenant string, page, pageSize int) ([]*domain.MealAnalysis, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
