// Package reports turns each dashboard report into datastore queries and
// reshapes the answers. Operations share no mutable state.
package reports

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "soc-dashboard/internal/common/errors"
	"soc-dashboard/internal/common/logger"
	"soc-dashboard/internal/common/validation"
	"soc-dashboard/internal/models"
	"soc-dashboard/internal/reports/queries"

	"golang.org/x/sync/errgroup"
)

// Report ids, matching the catalog in pkg/registry.
const (
	ReportAlerts       = "alerts"
	ReportSeverity     = "severity"
	ReportCritical     = "critical"
	ReportTimeline     = "timeline"
	ReportTopAttackers = "top-attackers"
	ReportMitre        = "mitre"
	ReportTopHosts     = "top-hosts"
	ReportFailedLogins = "failed-logins"
)

// Datastore is the subset of the datastore client the reports need.
type Datastore interface {
	Search(ctx context.Context, body map[string]interface{}) ([]byte, error)
	Count(ctx context.Context, body map[string]interface{}) ([]byte, error)
}

// Service runs reports against one datastore.
type Service struct {
	store      Datastore
	cache      Cache
	logger     logger.Logger
	validators map[string]*validation.Validator
	runners    map[string]func(context.Context) (interface{}, error)
	builders   map[string]func() queries.Query
}

func NewService(store Datastore, cache Cache, log logger.Logger) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	s := &Service{
		store:  store,
		cache:  cache,
		logger: log,
		validators: map[string]*validation.Validator{
			ReportAlerts:       validation.MustValidator(ReportAlerts, validation.CountSchema()),
			ReportCritical:     validation.MustValidator(ReportCritical, validation.CountSchema()),
			ReportSeverity:     validation.MustValidator(ReportSeverity, validation.AggregationSchema(queries.AggSeverity)),
			ReportTimeline:     validation.MustValidator(ReportTimeline, validation.AggregationSchema(queries.AggTimeline)),
			ReportTopAttackers: validation.MustValidator(ReportTopAttackers, validation.AggregationSchema(queries.AggAttackers)),
			ReportMitre:        validation.MustValidator(ReportMitre, validation.AggregationSchema(queries.AggMitre)),
			ReportTopHosts:     validation.MustValidator(ReportTopHosts, validation.AggregationSchema(queries.AggHosts)),
			ReportFailedLogins: validation.MustValidator(ReportFailedLogins, validation.AggregationSchema(queries.AggSources)),
		},
	}

	s.builders = map[string]func() queries.Query{
		ReportAlerts:       queries.AlertsLast24h,
		ReportSeverity:     queries.Severity,
		ReportCritical:     queries.Critical,
		ReportTimeline:     queries.Timeline,
		ReportTopAttackers: queries.TopAttackers,
		ReportMitre:        queries.MitreTechniques,
		ReportTopHosts:     queries.TopHosts,
		ReportFailedLogins: queries.FailedLogins,
	}

	s.runners = map[string]func(context.Context) (interface{}, error){
		ReportAlerts:       func(ctx context.Context) (interface{}, error) { return s.AlertsSummary(ctx) },
		ReportSeverity:     func(ctx context.Context) (interface{}, error) { return s.SeverityBreakdown(ctx) },
		ReportCritical:     func(ctx context.Context) (interface{}, error) { return s.CriticalCount(ctx) },
		ReportTimeline:     func(ctx context.Context) (interface{}, error) { return s.Timeline(ctx) },
		ReportTopAttackers: func(ctx context.Context) (interface{}, error) { return s.TopAttackers(ctx) },
		ReportMitre:        func(ctx context.Context) (interface{}, error) { return s.MitreTechniques(ctx) },
		ReportTopHosts:     func(ctx context.Context) (interface{}, error) { return s.TopHosts(ctx) },
		ReportFailedLogins: func(ctx context.Context) (interface{}, error) { return s.FailedLogins(ctx) },
	}

	return s
}

// Has reports whether id names a known report.
func (s *Service) Has(id string) bool {
	_, ok := s.runners[id]
	return ok
}

// Describe returns a query of report id, carrying the datastore endpoint kind
// and aggregation name the report reads.
func (s *Service) Describe(id string) (queries.Query, bool) {
	build, ok := s.builders[id]
	if !ok {
		return queries.Query{}, false
	}
	return build(), true
}

// Run executes report id and returns its typed result.
func (s *Service) Run(ctx context.Context, id string) (interface{}, error) {
	run, ok := s.runners[id]
	if !ok {
		return nil, fmt.Errorf("unknown report: %s", id)
	}
	return run(ctx)
}

// Render returns the JSON body for report id, consulting the cache first.
func (s *Service) Render(ctx context.Context, id string) ([]byte, error) {
	if payload, ok := s.cache.Get(ctx, id); ok {
		return payload, nil
	}

	result, err := s.Run(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode report %s: %w", id, err)
	}

	s.cache.Set(ctx, id, payload)
	return payload, nil
}

// AlertsSummary counts alerts for the last 24 hours and for all time. Both
// counts run concurrently; the first failure cancels the other and no
// partial summary is returned.
func (s *Service) AlertsSummary(ctx context.Context) (*models.AlertsSummary, error) {
	var summary models.AlertsSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.count(gctx, ReportAlerts, queries.AlertsLast24h())
		summary.Last24h = n
		return err
	})
	g.Go(func() error {
		n, err := s.count(gctx, ReportAlerts, queries.AlertsAllTime())
		summary.AllTime = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) SeverityBreakdown(ctx context.Context) ([]models.Bucket, error) {
	return s.buckets(ctx, ReportSeverity, queries.Severity())
}

// CriticalCount counts alerts at rule level 12 or above. Zero is a valid answer.
func (s *Service) CriticalCount(ctx context.Context) (*models.CriticalCount, error) {
	n, err := s.count(ctx, ReportCritical, queries.Critical())
	if err != nil {
		return nil, err
	}
	return &models.CriticalCount{Critical: n}, nil
}

// Timeline returns hourly buckets; each carries key_as_string from the datastore.
func (s *Service) Timeline(ctx context.Context) ([]models.Bucket, error) {
	return s.buckets(ctx, ReportTimeline, queries.Timeline())
}

func (s *Service) TopAttackers(ctx context.Context) ([]models.Bucket, error) {
	return s.buckets(ctx, ReportTopAttackers, queries.TopAttackers())
}

func (s *Service) MitreTechniques(ctx context.Context) ([]models.Bucket, error) {
	return s.buckets(ctx, ReportMitre, queries.MitreTechniques())
}

func (s *Service) TopHosts(ctx context.Context) ([]models.Bucket, error) {
	return s.buckets(ctx, ReportTopHosts, queries.TopHosts())
}

func (s *Service) FailedLogins(ctx context.Context) ([]models.Bucket, error) {
	return s.buckets(ctx, ReportFailedLogins, queries.FailedLogins())
}

func (s *Service) count(ctx context.Context, report string, q queries.Query) (int64, error) {
	body, err := s.store.Count(ctx, q.Body)
	if err != nil {
		return 0, err
	}

	if err := s.validators[report].Validate(body); err != nil {
		return 0, err
	}

	var res models.CountResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return 0, apperrors.NewShapeError(report, err.Error())
	}
	return res.Count, nil
}

// buckets returns aggregations.<agg>.buckets unmodified and in datastore order.
func (s *Service) buckets(ctx context.Context, report string, q queries.Query) ([]models.Bucket, error) {
	body, err := s.store.Search(ctx, q.Body)
	if err != nil {
		return nil, err
	}

	if err := s.validators[report].Validate(body); err != nil {
		return nil, err
	}

	var res models.SearchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, apperrors.NewShapeError(report, err.Error())
	}

	buckets := res.Aggregations[q.Aggregation].Buckets
	if buckets == nil {
		buckets = []models.Bucket{}
	}

	s.logger.Debug("report buckets extracted", map[string]interface{}{
		"report":  report,
		"buckets": len(buckets),
	})
	return buckets, nil
}
