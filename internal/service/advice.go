package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dan9191/financial-time-machine/internal/integrations/advisor"
	"github.com/Dan9191/financial-time-machine/internal/models"
	"github.com/Dan9191/financial-time-machine/internal/repository"
	"github.com/Dan9191/financial-time-machine/internal/utils"
)

// AdviceResult is delivered once per advice task
type AdviceResult struct {
	Advice     string
	Paragraphs []string
	Cached     bool
	Err        error
}

// StartAdvice runs the advice request in its own goroutine. The channel
// receives exactly one result and is then closed; cancelling ctx aborts the
// upstream call.
func (s *Service) StartAdvice(ctx context.Context, req models.AdviceRequest) <-chan AdviceResult {
	out := make(chan AdviceResult, 1)
	go func() {
		defer close(out)
		// net/http does not recover panics raised in this goroutine
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorf("Advice task panicked: %v", r)
				out <- AdviceResult{Err: fmt.Errorf("advice task failed: %v", r)}
			}
		}()
		out <- s.advise(ctx, req)
	}()
	return out
}

// Advise waits for the advice task started for req, or for ctx to end
func (s *Service) Advise(ctx context.Context, req models.AdviceRequest) AdviceResult {
	select {
	case res := <-s.StartAdvice(ctx, req):
		return res
	case <-ctx.Done():
		return AdviceResult{Err: ctx.Err()}
	}
}

func (s *Service) advise(ctx context.Context, req models.AdviceRequest) AdviceResult {
	in, err := s.adviceInput(req)
	if err != nil {
		return AdviceResult{Err: err}
	}

	key := s.cacheKey(in)
	if cached, ok := s.cachedAdvice(ctx, key); ok {
		return AdviceResult{Advice: cached, Paragraphs: utils.SplitParagraphs(cached), Cached: true}
	}

	advice, err := s.advisor.Advise(ctx, in)
	if err != nil {
		return AdviceResult{Err: err}
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, advice); err != nil {
			s.log.Warnf("Failed to cache advice: %v", err)
		}
	}
	return AdviceResult{Advice: advice, Paragraphs: utils.SplitParagraphs(advice)}
}

func (s *Service) adviceInput(req models.AdviceRequest) (advisor.Input, error) {
	scenario := strings.TrimSpace(req.SelectedScenario)
	if req.FinancialData == nil || len(req.TimelineData) == 0 || scenario == "" {
		return advisor.Input{}, ErrMissingAdviceData
	}

	snapshot := req.FinancialData.Snapshot()
	if err := validateSnapshot(snapshot); err != nil {
		return advisor.Input{}, err
	}
	if err := validateTimeline(req.TimelineData); err != nil {
		return advisor.Input{}, err
	}

	if strategy, err := models.ParseStrategy(scenario); err == nil {
		scenario = strategy.String()
	}

	years := req.FinancialData.YearsToProject
	if years <= 0 {
		years = len(req.TimelineData) - 1
	}

	in := advisor.Input{
		Snapshot:       snapshot,
		YearsToProject: years,
		Timeline:       req.TimelineData,
		Strategy:       scenario,
	}
	if s.rates != nil {
		if kr, ok := s.rates.Latest(); ok {
			in.KeyRate = &kr
		}
	}
	return in, nil
}

func (s *Service) cacheKey(in advisor.Input) string {
	if s.cache == nil {
		return ""
	}
	key, err := repository.AdviceKey(in)
	if err != nil {
		s.log.Warnf("Advice cache disabled for request: %v", err)
		return ""
	}
	return key
}

func (s *Service) cachedAdvice(ctx context.Context, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	advice, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warnf("Failed to read advice cache: %v", err)
		return "", false
	}
	if ok {
		s.log.WithField("key", key).Debug("Advice cache hit")
	}
	return advice, ok
}
