// Package memory es un Repository en proceso para tests y desarrollo.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/fjcanyue/smart-survey/internal/store/core"
)

type Store struct {
	mu      sync.RWMutex
	surveys map[string]core.Survey
	results map[string][]core.Result // por survey id
	now     func() time.Time
}

func New() *Store {
	return &Store{
		surveys: make(map[string]core.Survey),
		results: make(map[string][]core.Result),
		now:     time.Now,
	}
}

var _ core.Repository = (*Store)(nil)

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func cloneSurvey(in core.Survey) core.Survey {
	out := in
	out.JSON = append(json.RawMessage(nil), in.JSON...)
	if in.OwnerID != nil {
		v := *in.OwnerID
		out.OwnerID = &v
	}
	if in.OwnerEmail != nil {
		v := *in.OwnerEmail
		out.OwnerEmail = &v
	}
	return out
}

func (s *Store) CreateSurvey(_ context.Context, sv *core.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[sv.ID]; ok {
		return core.ErrConflict
	}
	now := s.now().UTC()
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = now
	}
	sv.UpdatedAt = now
	s.surveys[sv.ID] = cloneSurvey(*sv)
	return nil
}

func (s *Store) UpdateSurvey(_ context.Context, sv *core.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.surveys[sv.ID]
	if !ok {
		return core.ErrNotFound
	}
	if cur.OwnerID != nil && (sv.OwnerID == nil || *cur.OwnerID != *sv.OwnerID) {
		return core.ErrOwned
	}
	sv.CreatedAt = cur.CreatedAt
	sv.UpdatedAt = s.now().UTC()
	s.surveys[sv.ID] = cloneSurvey(*sv)
	return nil
}

func (s *Store) GetSurvey(_ context.Context, id string) (*core.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sv, ok := s.surveys[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := cloneSurvey(sv)
	return &out, nil
}

func (s *Store) ListSurveysByOwner(_ context.Context, ownerID string, limit, offset int) ([]core.Survey, int, error) {
	s.mu.RLock()
	var mine []core.Survey
	for _, sv := range s.surveys {
		if sv.OwnerID != nil && *sv.OwnerID == ownerID {
			mine = append(mine, cloneSurvey(sv))
		}
	}
	s.mu.RUnlock()

	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	return page(mine, limit, offset), len(mine), nil
}

func (s *Store) DeleteSurvey(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.results, id)
	delete(s.surveys, id)
	return nil
}

func (s *Store) CreateResult(_ context.Context, r *core.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	cp := *r
	cp.Data = append(json.RawMessage(nil), r.Data...)
	s.results[r.SurveyID] = append(s.results[r.SurveyID], cp)
	return nil
}

func (s *Store) ListResults(_ context.Context, surveyID string, limit, offset int) ([]core.Result, error) {
	s.mu.RLock()
	src := s.results[surveyID]
	rs := make([]core.Result, 0, len(src))
	// orden inverso de inserción: ante empate de created_at gana la última
	for i := len(src) - 1; i >= 0; i-- {
		rs = append(rs, src[i])
	}
	s.mu.RUnlock()

	sort.SliceStable(rs, func(i, j int) bool { return rs[i].CreatedAt.After(rs[j].CreatedAt) })
	return page(rs, limit, offset), nil
}

func (s *Store) ResultStats(_ context.Context, surveyID string) (core.ResultStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs := s.results[surveyID]
	st := core.ResultStats{Total: len(rs)}
	for _, r := range rs {
		if st.LatestSubmission == nil || r.CreatedAt.After(*st.LatestSubmission) {
			t := r.CreatedAt
			st.LatestSubmission = &t
		}
	}
	return st, nil
}

func page[T any](in []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
