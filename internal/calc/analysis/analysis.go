package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"Structura/internal/calc/components"
	"Structura/internal/calc/energy"
	"Structura/internal/calc/safety"
	"Structura/internal/repo"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const maxBatch = 100

type Request struct {
	Title      string           `json:"title,omitempty"`
	Safety     safety.Input     `json:"safety"`
	Energy     energy.Input     `json:"energy"`
	Components components.Input `json:"components"`
}

type Response struct {
	Safety     safety.Result     `json:"safety"`
	Energy     energy.Result     `json:"energy"`
	Components components.Result `json:"components"`
}

// Analyze runs the three evaluators independently and merges their results.
func Analyze(req Request) Response {
	return Response{
		Safety:     safety.Evaluate(req.Safety),
		Energy:     energy.Evaluate(req.Energy),
		Components: components.Evaluate(req.Components),
	}
}

// Service memoises Analyze and records analyses for signed-in users.
// The evaluators are pure, so a cached response is always identical to a
// fresh one. Callers always receive their own copy of a cached response.
type Service struct {
	cache *lru.Cache[string, Response]
	store repo.AnalysisRepository
	now   func() time.Time
}

func NewService(cacheSize int, store repo.AnalysisRepository) (*Service, error) {
	cache, err := lru.New[string, Response](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create analysis cache: %w", err)
	}
	return &Service{cache: cache, store: store, now: time.Now}, nil
}

func (s *Service) Analyze(req Request) Response {
	key, err := cacheKey(req)
	if err != nil {
		return Analyze(req)
	}
	if res, ok := s.cache.Get(key); ok {
		return res.clone()
	}
	res := Analyze(req)
	s.cache.Add(key, res.clone())
	return res
}

func (r Response) clone() Response {
	r.Safety.Errors = slices.Clone(r.Safety.Errors)
	r.Components = maps.Clone(r.Components)
	return r
}

func (s *Service) Batch(reqs []Request) ([]Response, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("no items")
	}
	if len(reqs) > maxBatch {
		return nil, fmt.Errorf("too many items: %d > %d", len(reqs), maxBatch)
	}
	out := make([]Response, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, s.Analyze(req))
	}
	return out, nil
}

// Record analyses req and stores the exchange under the user's history.
func (s *Service) Record(ctx context.Context, userID int, req Request) (repo.AnalysisRecord, Response, error) {
	res := s.Analyze(req)

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return repo.AnalysisRecord{}, res, fmt.Errorf("encode request: %w", err)
	}
	resJSON, err := json.Marshal(res)
	if err != nil {
		return repo.AnalysisRecord{}, res, fmt.Errorf("encode response: %w", err)
	}
	rec := repo.AnalysisRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     req.Title,
		Status:    res.Safety.Status,
		Request:   reqJSON,
		Response:  resJSON,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveAnalysis(ctx, rec); err != nil {
		return repo.AnalysisRecord{}, res, err
	}
	return rec, res, nil
}

func (s *Service) History(ctx context.Context, userID, limit int) ([]repo.AnalysisRecord, error) {
	return s.store.ListAnalyses(ctx, userID, limit)
}

func (s *Service) Get(ctx context.Context, userID int, id string) (repo.AnalysisRecord, error) {
	return s.store.GetAnalysis(ctx, userID, id)
}

func cacheKey(req Request) (string, error) {
	req.Title = ""
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
