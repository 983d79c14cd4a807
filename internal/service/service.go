package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"

	"github.com/Dan9191/financial-time-machine/internal/integrations/advisor"
	"github.com/Dan9191/financial-time-machine/internal/models"
	"github.com/Dan9191/financial-time-machine/internal/projection"
	"github.com/Dan9191/financial-time-machine/internal/repository"
	"github.com/Dan9191/financial-time-machine/internal/utils/email"
	"github.com/sirupsen/logrus"
)

const (
	MinYearsToProject     = 1
	MaxYearsToProject     = 30
	DefaultYearsToProject = 10
)

var (
	ErrInvalidSnapshot    = errors.New("invalid financial data")
	ErrMissingAdviceData  = errors.New("missing required financial data")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrKeyRateUnavailable = errors.New("key rate feed is not configured")
	ErrEmailNotConfigured = errors.New("email delivery is not configured")
)

// Advisor generates advice text for a projection
type Advisor interface {
	Advise(ctx context.Context, in advisor.Input) (string, error)
}

// KeyRateSource provides the reference interest rate
type KeyRateSource interface {
	Latest() (models.KeyRate, bool)
	Refresh(ctx context.Context) (models.KeyRate, error)
}

// Mailer delivers projection summaries
type Mailer interface {
	SendProjectionSummary(to string, result models.ProjectionResult, advice string) error
}

// Service handles business logic
type Service struct {
	advisor Advisor
	cache   repository.AdviceCache
	rates   KeyRateSource
	mailer  Mailer
	log     *logrus.Logger
}

// NewService initializes a new service. cache, rates and mailer may be nil.
func NewService(advisor Advisor, cache repository.AdviceCache, rates KeyRateSource, mailer Mailer, log *logrus.Logger) *Service {
	return &Service{
		advisor: advisor,
		cache:   cache,
		rates:   rates,
		mailer:  mailer,
		log:     log,
	}
}

// ClampHorizon bounds years to 1..30; zero means the form left it unset
func ClampHorizon(years int) int {
	switch {
	case years == 0:
		return DefaultYearsToProject
	case years < MinYearsToProject:
		return MinYearsToProject
	case years > MaxYearsToProject:
		return MaxYearsToProject
	default:
		return years
	}
}

// Strategies returns the strategy catalogue
func (s *Service) Strategies() []models.StrategyInfo {
	strategies := models.Strategies()
	infos := make([]models.StrategyInfo, 0, len(strategies))
	for _, strategy := range strategies {
		infos = append(infos, strategy.Info())
	}
	return infos
}

// Project validates the request and runs the projection engine
func (s *Service) Project(req models.ProjectionRequest) (models.ProjectionResult, error) {
	strategy, err := models.ParseStrategy(req.SelectedScenario)
	if err != nil {
		return models.ProjectionResult{}, err
	}

	snapshot := req.FinancialData.Snapshot()
	if err := validateSnapshot(snapshot); err != nil {
		return models.ProjectionResult{}, err
	}

	years := ClampHorizon(req.FinancialData.YearsToProject)
	p := projection.Project(snapshot, strategy, years)
	if err := validateTimeline(p.Timeline); err != nil {
		return models.ProjectionResult{}, fmt.Errorf("%w (amounts grow too large to project)", err)
	}

	s.log.WithFields(logrus.Fields{
		"strategy": strategy.ID(),
		"years":    years,
	}).Debug("Projection computed")

	return models.ProjectionResult{
		Strategy:       strategy,
		Description:    strategy.Description(),
		YearsToProject: years,
		Timeline:       p.Timeline,
		Summary:        Summarize(p),
	}, nil
}

// Summarize extracts the headline figures of a projection
func Summarize(p projection.Projection) models.TimelineSummary {
	first, ok := p.Timeline.First()
	if !ok {
		return models.TimelineSummary{}
	}
	last, _ := p.Timeline.Last()

	summary := models.TimelineSummary{
		StartNetWorth:  first.NetWorth,
		FinalNetWorth:  last.NetWorth,
		NetWorthChange: p.Timeline.NetWorthChange(),
		FinalSavings:   last.Savings,
		FinalDebt:      last.Debt,
	}
	// the first year outstanding debt is paid off; a plan that starts
	// debt free has no such year
	for i := 1; i < len(p.Timeline); i++ {
		if p.Timeline[i-1].Debt > 0 && p.Timeline[i].Debt <= 0 {
			year := p.Timeline[i].Year
			summary.DebtFreeYear = &year
			break
		}
	}
	if p.HomePurchaseYear > 0 {
		year := p.HomePurchaseYear
		summary.HomePurchaseYear = &year
	}
	return summary
}

func validateSnapshot(snapshot models.FinancialSnapshot) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"currentIncome", snapshot.MonthlyIncome},
		{"currentExpenses", snapshot.MonthlyExpenses},
		{"currentSavings", snapshot.Savings},
		{"currentDebt", snapshot.Debt},
	}
	for _, f := range fields {
		if !finite(f.value) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidSnapshot, f.name)
		}
	}
	return nil
}

// validateTimeline rejects points, and a net worth change, that are not finite
func validateTimeline(timeline models.Timeline) error {
	for _, point := range timeline {
		if !finite(point.Savings) || !finite(point.Debt) || !finite(point.NetWorth) {
			return fmt.Errorf("%w: year %d is not a finite amount", ErrInvalidSnapshot, point.Year)
		}
	}
	if !finite(timeline.NetWorthChange()) {
		return fmt.Errorf("%w: net worth change is not a finite amount", ErrInvalidSnapshot)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// EmailSummary recomputes the projection and mails it to req.Email
func (s *Service) EmailSummary(req models.EmailRequest) error {
	if s.mailer == nil {
		return ErrEmailNotConfigured
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}

	result, err := s.Project(models.ProjectionRequest{
		FinancialData:    req.FinancialData,
		SelectedScenario: req.SelectedScenario,
	})
	if err != nil {
		return err
	}

	if err := s.mailer.SendProjectionSummary(addr.Address, result, req.Advice); err != nil {
		if errors.Is(err, email.ErrDisabled) {
			return ErrEmailNotConfigured
		}
		return err
	}
	return nil
}

// KeyRate returns the latest reference rate, fetching it if none is stored yet
func (s *Service) KeyRate(ctx context.Context) (models.KeyRate, error) {
	if s.rates == nil {
		return models.KeyRate{}, ErrKeyRateUnavailable
	}
	if kr, ok := s.rates.Latest(); ok {
		return kr, nil
	}
	return s.rates.Refresh(ctx)
}
