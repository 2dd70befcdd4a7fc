package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Classifier is the outlier classification service seen from the workflow.
type Classifier interface {
	Classify(ctx context.Context, features map[string]any) (bool, error)
}

// Recommender is the action-generation service seen from the workflow.
type Recommender interface {
	Recommend(ctx context.Context, features map[string]any) (string, error)
}

// Service runs the create/update orchestration workflow: persist the record,
// classify it, conditionally generate a recommendation, and persist the
// results. The record write always comes first, so a flaky downstream
// dependency can never block or roll back the primary CRUD operation.
// Orchestration failures degrade the derived fields instead of failing the
// request.
type Service struct {
	repo        Repository
	classifier  Classifier
	recommender Recommender
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(repo Repository, classifier Classifier, recommender Recommender, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		classifier:  classifier,
		recommender: recommender,
		logger:      logger,
		now:         time.Now,
	}
}

func validate(p *Patient) error {
	if p.Email == "" {
		return fmt.Errorf("email is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.BirthDate.IsZero() {
		return fmt.Errorf("birth_date is required")
	}
	return nil
}

// Create inserts a new record and runs orchestration on it. A duplicate email
// aborts the whole request; downstream failures do not.
func (s *Service) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.orchestrate(ctx, p)
	return p, nil
}

// Update overwrites all mutable fields and re-runs orchestration
// unconditionally, even when no feature-relevant field changed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p *Patient) (*Patient, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.orchestrate(ctx, p)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, query, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// orchestrate runs steps 2-5 of the workflow against an already-persisted
// record, mutating p with whatever results were obtained. The two remote
// calls are strictly sequential: recommendation is issued only after
// classification, and only for outliers. Errors are contained here: logged
// as operational alerts, never propagated to the caller.
func (s *Service) orchestrate(ctx context.Context, p *Patient) {
	features := Features(p, s.now())

	isOutlier, err := s.classifier.Classify(ctx, features)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("patient_id", p.ID.String()).
			Msg("orchestration: classification unavailable, record kept with prior results")
		return
	}
	p.IsOutlier = &isOutlier

	var actions *string
	if isOutlier {
		text, err := s.recommender.Recommend(ctx, features)
		if err != nil {
			// The outlier flag is still persisted; the prior actions text is
			// kept rather than replaced with a fallback.
			s.logger.Error().
				Err(err).
				Str("patient_id", p.ID.String()).
				Msg("orchestration: recommendation unavailable, storing classification only")
		} else {
			actions = &text
		}
	} else {
		msg := StableActionsMessage
		actions = &msg
	}
	if actions != nil {
		p.GeneratedActions = actions
	}

	if err := s.repo.UpdateOrchestration(ctx, p.ID, p.IsOutlier, actions); err != nil {
		s.logger.Error().
			Err(err).
			Str("patient_id", p.ID.String()).
			Msg("orchestration: failed to persist classification results")
	}
}
