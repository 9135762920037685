package results

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fjcanyue/smart-survey/internal/email"
	"github.com/fjcanyue/smart-survey/internal/metrics"
	"github.com/fjcanyue/smart-survey/internal/observability/logger"
	"github.com/fjcanyue/smart-survey/internal/store/core"
	"github.com/fjcanyue/smart-survey/internal/survey"
	"github.com/fjcanyue/smart-survey/internal/util"
)

const DefaultListLimit = 100

const notifyTimeout = 30 * time.Second

// ErrInvalidAnswers: the submitted data is missing or not a JSON object.
var ErrInvalidAnswers = errors.New("missing or invalid answers")

// SurveyReader loads the survey a result belongs to. *survey.Service
// satisfies it.
type SurveyReader interface {
	Get(ctx context.Context, id string) (*core.Survey, error)
}

// ResultNotifier tells a survey owner about a new submission.
type ResultNotifier interface {
	NotifyResult(ctx context.Context, to string, notice email.ResultNotice) error
}

type Options struct {
	// Notifier is optional; nil disables owner notifications.
	Notifier ResultNotifier
	// FrontendURL is used to build the link in notifications.
	FrontendURL string
	Clock       func() time.Time
}

type Service struct {
	surveys  SurveyReader
	repo     core.ResultRepository
	notifier ResultNotifier
	frontend string
	now      func() time.Time
	// wait is called after the notification goroutine ends; tests hook it.
	wait func()
}

func NewService(surveys SurveyReader, repo core.ResultRepository, opts Options) *Service {
	s := &Service{
		surveys:  surveys,
		repo:     repo,
		notifier: opts.Notifier,
		frontend: opts.FrontendURL,
		now:      opts.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type Page struct {
	Results     []core.Result
	SurveyTitle string
	Total       int
	Limit       int
	Offset      int
}

type Stats struct {
	SurveyID         string
	SurveyTitle      string
	Total            int
	LatestSubmission *time.Time
	Questions        []QuestionStat
}

// Submit stores one set of answers and returns the new result id.
func (s *Service) Submit(ctx context.Context, surveyID string, data json.RawMessage) (string, error) {
	if !isObject(data) {
		return "", ErrInvalidAnswers
	}
	sv, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return "", err
	}

	now := s.now()
	r := &core.Result{
		ID:        survey.NewResultID(now),
		SurveyID:  sv.ID,
		Data:      data,
		CreatedAt: now.UTC(),
	}
	if err := s.repo.CreateResult(ctx, r); err != nil {
		return "", fmt.Errorf("store result: %w", err)
	}
	metrics.ResultsSubmitted.Inc()
	logger.From(ctx).Info("result submitted",
		logger.Layer("service"), logger.SurveyID(sv.ID), logger.ResultID(r.ID))

	if s.notifier != nil && sv.OwnerEmail != nil && *sv.OwnerEmail != "" {
		s.notify(ctx, *sv.OwnerEmail, email.ResultNotice{
			SurveyID:    sv.ID,
			SurveyTitle: sv.Title,
			ResultID:    r.ID,
			SubmittedAt: r.CreatedAt,
			ResultsURL:  s.frontend + "/results/" + sv.ID,
		})
	}
	return r.ID, nil
}

// notify runs detached from the request: the submission already succeeded.
func (s *Service) notify(ctx context.Context, to string, notice email.ResultNotice) {
	log := logger.From(ctx).With(logger.Component("results.notify"), logger.SurveyID(notice.SurveyID),
		logger.String("to", util.MaskEmail(to)))
	go func() {
		if s.wait != nil {
			defer s.wait()
		}
		nctx, cancel := context.WithTimeout(logger.ToContext(context.Background(), log), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyResult(nctx, to, notice); err != nil {
			log.Warn("owner notification failed", logger.Err(err))
			return
		}
		log.Debug("owner notified")
	}()
}

// List pages through a survey's results, newest first. Total counts every
// result of the survey, not just the page.
func (s *Service) List(ctx context.Context, surveyID string, limit, offset int) (Page, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	sv, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return Page{}, err
	}
	list, err := s.repo.ListResults(ctx, sv.ID, limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("list results: %w", err)
	}
	st, err := s.repo.ResultStats(ctx, sv.ID)
	if err != nil {
		return Page{}, fmt.Errorf("result stats: %w", err)
	}
	return Page{Results: list, SurveyTitle: sv.Title, Total: st.Total, Limit: limit, Offset: offset}, nil
}

// Stats aggregates every result of a survey per question.
func (s *Service) Stats(ctx context.Context, surveyID string) (*Stats, error) {
	var (
		sv   *core.Survey
		all  []core.Result
		meta core.ResultStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sv, err = s.surveys.Get(gctx, surveyID)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = s.repo.ListResults(gctx, surveyID, 0, 0)
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		meta, err = s.repo.ResultStats(gctx, surveyID)
		if err != nil {
			return fmt.Errorf("result stats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	def, err := survey.ParseDefinition(sv.JSON)
	if err != nil {
		// stored definitions were validated on save; keep going with nothing
		logger.From(ctx).Warn("stored survey definition unreadable", logger.SurveyID(sv.ID), logger.Err(err))
		def = &survey.Definition{}
	}
	answers := make([]Answers, 0, len(all))
	for _, r := range all {
		answers = append(answers, DecodeAnswers(r.Data))
	}
	qs := ComputeDistribution(def, answers)
	if qs == nil {
		qs = []QuestionStat{}
	}
	return &Stats{
		SurveyID:         sv.ID,
		SurveyTitle:      sv.Title,
		Total:            meta.Total,
		LatestSubmission: meta.LatestSubmission,
		Questions:        qs,
	}, nil
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || t[0] != '{' {
		return false
	}
	return json.Valid(t)
}
