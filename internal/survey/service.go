package survey

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fjcanyue/smart-survey/internal/auth"
	"github.com/fjcanyue/smart-survey/internal/cache"
	"github.com/fjcanyue/smart-survey/internal/metrics"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
	"github.com/fjcanyue/smart-survey/internal/store/core"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Generator drafts a survey definition from a natural language prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (json.RawMessage, error)
}

// SaveOutcome says what Save did.
type SaveOutcome string

const (
	OutcomeCreated SaveOutcome = "created"
	OutcomeUpdated SaveOutcome = "updated"
	// OutcomeClaimed: an ownerless survey now belongs to the caller.
	OutcomeClaimed SaveOutcome = "claimed"
)

type SaveInput struct {
	ID        string
	JSON      json.RawMessage
	ThemeType string
}

type ListPage struct {
	Surveys []core.Survey
	Total   int
	Limit   int
	Offset  int
}

type GenerateOutput struct {
	ID   string
	JSON json.RawMessage
}

type Options struct {
	// Cache backs Get. Nil or CacheTTL <= 0 disables it.
	Cache     cache.Client
	CacheTTL  time.Duration
	Generator Generator
	Clock     func() time.Time
}

type Service struct {
	repo     core.SurveyRepository
	cache    cache.Client
	cacheTTL time.Duration
	gen      Generator
	now      func() time.Time
	group    singleflight.Group
}

func NewService(repo core.SurveyRepository, opts Options) *Service {
	s := &Service{
		repo:     repo,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		gen:      opts.Generator,
		now:      opts.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.cacheTTL <= 0 {
		s.cache = nil
	}
	return s
}

// Save creates or updates a survey for an authenticated caller. The current
// row is read from the store, never from the cache, so that the ownership
// check sees the latest owner.
func (s *Service) Save(ctx context.Context, caller *auth.UserProfile, in SaveInput) (SaveOutcome, error) {
	if caller == nil || caller.UserID == "" {
		return "", ErrUnauthenticated
	}
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" || isEmptyJSON(in.JSON) {
		return "", ErrMissingFields
	}
	if err := ValidateDefinition(in.JSON); err != nil {
		return "", err
	}

	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("survey"),
		logger.Op("Save"),
		logger.SurveyID(in.ID),
		logger.UserID(caller.UserID),
	)

	title := titleOf(in.JSON)
	theme := NormalizeTheme(in.ThemeType)

	// two attempts: a concurrent create turns our insert into an update, a
	// concurrent delete turns our update into an insert
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.repo.GetSurvey(ctx, in.ID)
		if errors.Is(err, core.ErrNotFound) {
			sv := &core.Survey{
				ID:         in.ID,
				Title:      title,
				JSON:       in.JSON,
				ThemeType:  theme,
				OwnerID:    ptr(caller.UserID),
				OwnerEmail: optional(caller.Email),
			}
			err := s.repo.CreateSurvey(ctx, sv)
			if errors.Is(err, core.ErrConflict) {
				continue
			}
			if err != nil {
				return "", fmt.Errorf("create survey: %w", err)
			}
			s.invalidate(ctx, in.ID)
			metrics.SurveysSaved.WithLabelValues(string(OutcomeCreated)).Inc()
			log.Info("survey created")
			return OutcomeCreated, nil
		}
		if err != nil {
			return "", fmt.Errorf("load survey: %w", err)
		}

		outcome := OutcomeUpdated
		switch {
		case !existing.HasOwner():
			outcome = OutcomeClaimed
		case *existing.OwnerID != caller.UserID:
			log.Warn("save rejected, survey owned by another user")
			return "", ErrForbidden
		}

		existing.Title = title
		existing.JSON = in.JSON
		existing.ThemeType = theme
		existing.OwnerID = ptr(caller.UserID)
		existing.OwnerEmail = optional(caller.Email)
		// ownership is re-checked by the store; ErrOwned means another caller
		// claimed the survey after our read
		err = s.repo.UpdateSurvey(ctx, existing)
		switch {
		case errors.Is(err, core.ErrOwned):
			log.Warn("save rejected, survey claimed concurrently")
			return "", ErrForbidden
		case errors.Is(err, core.ErrNotFound):
			continue
		case err != nil:
			return "", fmt.Errorf("update survey: %w", err)
		}
		s.invalidate(ctx, in.ID)
		metrics.SurveysSaved.WithLabelValues(string(outcome)).Inc()
		if outcome == OutcomeClaimed {
			log.Info("ownerless survey claimed")
		} else {
			log.Debug("survey updated")
		}
		return outcome, nil
	}
	return "", fmt.Errorf("save survey %s: %w", in.ID, core.ErrConflict)
}

// Get returns a survey, served through the read cache when enabled.
// Concurrent misses for the same id share one store read.
func (s *Service) Get(ctx context.Context, id string) (*core.Survey, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	if s.cache == nil {
		return s.load(ctx, id)
	}

	if sv, ok := s.fromCache(ctx, id); ok {
		return sv, nil
	}
	v, err, _ := s.group.Do(id, func() (any, error) {
		sv, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		s.toCache(ctx, sv)
		return sv, nil
	})
	if err != nil {
		return nil, err
	}
	cp := *v.(*core.Survey)
	return &cp, nil
}

func (s *Service) load(ctx context.Context, id string) (*core.Survey, error) {
	sv, err := s.repo.GetSurvey(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load survey: %w", err)
	}
	return sv, nil
}

// ListMine lists the caller's surveys, newest first. limit defaults to 50 and
// is capped at 100; a negative offset is treated as 0.
func (s *Service) ListMine(ctx context.Context, caller *auth.UserProfile, limit, offset int) (ListPage, error) {
	if caller == nil || caller.UserID == "" {
		return ListPage{}, ErrUnauthenticated
	}
	limit, offset = NormalizePage(limit, offset)
	list, total, err := s.repo.ListSurveysByOwner(ctx, caller.UserID, limit, offset)
	if err != nil {
		return ListPage{}, fmt.Errorf("list surveys: %w", err)
	}
	return ListPage{Surveys: list, Total: total, Limit: limit, Offset: offset}, nil
}

// NormalizePage applies the list bounds.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Delete removes a survey and its results. Only the owner may delete;
// ownerless surveys cannot be deleted.
func (s *Service) Delete(ctx context.Context, caller *auth.UserProfile, id string) error {
	if caller == nil || caller.UserID == "" {
		return ErrUnauthenticated
	}
	sv, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !sv.HasOwner() || *sv.OwnerID != caller.UserID {
		return ErrForbidden
	}
	if err := s.repo.DeleteSurvey(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete survey: %w", err)
	}
	s.invalidate(ctx, id)
	logger.From(ctx).Info("survey deleted",
		logger.Layer("service"), logger.SurveyID(id), logger.UserID(caller.UserID))
	return nil
}

// Generate drafts a survey from prompt and stores it under a new id. Storing
// is best effort: the draft is returned even if the save fails. caller may be
// nil, in which case the survey stays ownerless until someone saves it.
func (s *Service) Generate(ctx context.Context, caller *auth.UserProfile, prompt string) (GenerateOutput, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return GenerateOutput{}, ErrEmptyPrompt
	}
	if s.gen == nil {
		return GenerateOutput{}, errors.New("survey generator not configured")
	}
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("survey"), logger.Op("Generate"))

	draft, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return GenerateOutput{}, fmt.Errorf("generate survey: %w", err)
	}
	if err := ValidateDefinition(draft); err != nil {
		log.Error("generated survey failed validation", logger.Err(err))
		return GenerateOutput{}, fmt.Errorf("%w: %s", ErrInvalidDraft, Reason(err))
	}

	id := NewSurveyID(s.now())
	sv := &core.Survey{
		ID:        id,
		Title:     titleOf(draft),
		JSON:      draft,
		ThemeType: DefaultTheme,
	}
	if caller != nil && caller.UserID != "" {
		sv.OwnerID = ptr(caller.UserID)
		sv.OwnerEmail = optional(caller.Email)
	}
	if err := s.repo.CreateSurvey(ctx, sv); err != nil {
		log.Warn("generated survey not stored", logger.SurveyID(id), logger.Err(err))
	} else {
		metrics.SurveysSaved.WithLabelValues("generated").Inc()
		log.Info("generated survey stored", logger.SurveyID(id))
	}
	return GenerateOutput{ID: id, JSON: draft}, nil
}

// cachedSurvey is the cache encoding of core.Survey.
type cachedSurvey struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	JSON       json.RawMessage `json:"json"`
	ThemeType  string          `json:"themeType"`
	OwnerID    *string         `json:"ownerId"`
	OwnerEmail *string         `json:"ownerEmail"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func cacheKey(id string) string { return "survey:" + id }

func (s *Service) fromCache(ctx context.Context, id string) (*core.Survey, bool) {
	v, err := s.cache.Get(ctx, cacheKey(id))
	if err != nil {
		if cache.IsNotFound(err) {
			metrics.SurveyCache.WithLabelValues("miss").Inc()
		} else {
			metrics.SurveyCache.WithLabelValues("error").Inc()
			logger.From(ctx).Warn("survey cache read failed", logger.SurveyID(id), logger.Err(err))
		}
		return nil, false
	}
	var c cachedSurvey
	if err := json.Unmarshal([]byte(v), &c); err != nil {
		metrics.SurveyCache.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.SurveyCache.WithLabelValues("hit").Inc()
	return &core.Survey{
		ID:         c.ID,
		Title:      c.Title,
		JSON:       c.JSON,
		ThemeType:  c.ThemeType,
		OwnerID:    c.OwnerID,
		OwnerEmail: c.OwnerEmail,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}, true
}

func (s *Service) toCache(ctx context.Context, sv *core.Survey) {
	b, err := json.Marshal(cachedSurvey{
		ID:         sv.ID,
		Title:      sv.Title,
		JSON:       sv.JSON,
		ThemeType:  sv.ThemeType,
		OwnerID:    sv.OwnerID,
		OwnerEmail: sv.OwnerEmail,
		CreatedAt:  sv.CreatedAt,
		UpdatedAt:  sv.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(sv.ID), string(b), s.cacheTTL); err != nil {
		logger.From(ctx).Warn("survey cache write failed", logger.SurveyID(sv.ID), logger.Err(err))
	}
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		logger.From(ctx).Warn("survey cache invalidation failed", logger.SurveyID(id), logger.Err(err))
	}
}

func titleOf(raw []byte) string {
	var head struct {
		Title any `json:"title"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ""
	}
	t, _ := head.Title.(string)
	return t
}

func isEmptyJSON(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func ptr(s string) *string { return &s }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
