package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"vx-landing/internal/domain"
	"vx-landing/internal/metrics"
	"vx-landing/internal/repository"
	"vx-landing/pkg/logger"
)

// Retention and reporting windows
const (
	AnalyticsRetention = 30 * 24 * time.Hour
	TopSourcesLimit    = 10
)

// Traffic source names
const (
	SourceDirect = "Прямые переходы"
	SourceOther  = "Другие сайты"
)

// Report ranges accepted by GET /admin/analytics
const (
	RangeToday = "today"
	RangeWeek  = "week"
	RangeMonth = "month"
)

// sourceRules maps referrer substrings to source names; first match wins
var sourceRules = []struct {
	needle string
	name   string
}{
	{"google", "Google"},
	{"yandex", "Yandex"},
	{"vk.com", "VKontakte"},
	{"t.me", "Telegram"},
	{"instagram", "Instagram"},
	{"facebook", "Facebook"},
}

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

type analyticsService struct {
	repo   repository.AnalyticsRepository
	clock  Clock
	logger *logger.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo repository.AnalyticsRepository, clock Clock, logger *logger.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

// ClassifySource names the traffic source of a referrer. A referrer on the
// site's own host counts as a direct visit.
func ClassifySource(referer, host string) string {
	if referer == "" || (host != "" && strings.Contains(referer, host)) {
		return SourceDirect
	}
	for _, rule := range sourceRules {
		if strings.Contains(referer, rule.needle) {
			return rule.name
		}
	}
	return SourceOther
}

// TrackVisit counts the visitor once per UTC day and prunes old entries.
// The document is written on every call, even for repeat visitors.
func (s *analyticsService) TrackVisit(ctx context.Context, visit domain.VisitRequest) error {
	now := s.clock.now().UTC()
	today := now.Format(domain.DateLayout)

	var tracked string
	err := s.repo.UpdateAnalytics(ctx, func(a *domain.Analytics) error {
		if !containsString(a.UniqueVisitors[today], visit.IP) {
			a.UniqueVisitors[today] = append(a.UniqueVisitors[today], visit.IP)
			incrementVisits(a, today)

			tracked = ClassifySource(visit.Referer, visit.Host)
			incrementSource(a, tracked)
		}
		prune(a, now)
		return nil
	})
	if err != nil {
		return err
	}

	if tracked != "" {
		metrics.VisitsTracked.WithLabelValues(tracked).Inc()
		s.logger.WithField("source", tracked).Debug("Unique visit tracked")
	}
	return nil
}

// Report filters visits by range and returns the top sources by count.
// Unknown ranges return every retained day.
func (s *analyticsService) Report(ctx context.Context, rangeName string) (*domain.AnalyticsReport, error) {
	a, err := s.repo.Analytics(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.now().UTC()
	visits := make([]domain.DailyVisits, 0, len(a.Visits))
	for _, v := range a.Visits {
		if inRange(v.Date, rangeName, now) {
			visits = append(visits, v)
		}
	}

	sources := append([]domain.SourceCount(nil), a.Sources...)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Count > sources[j].Count
	})
	if len(sources) > TopSourcesLimit {
		sources = sources[:TopSourcesLimit]
	}
	if sources == nil {
		sources = []domain.SourceCount{}
	}

	return &domain.AnalyticsReport{Visits: visits, Sources: sources}, nil
}

// TodayVisits returns today's unique visit count
func (s *analyticsService) TodayVisits(ctx context.Context) (int, error) {
	a, err := s.repo.Analytics(ctx)
	if err != nil {
		return 0, err
	}
	return a.VisitsOn(s.clock.now().UTC().Format(domain.DateLayout)), nil
}

func inRange(date, rangeName string, now time.Time) bool {
	switch rangeName {
	case RangeToday:
		return date == now.Format(domain.DateLayout)
	case RangeWeek:
		return date >= now.Add(-7*24*time.Hour).Format(domain.DateLayout)
	case RangeMonth:
		return date >= now.Add(-30*24*time.Hour).Format(domain.DateLayout)
	default:
		return true
	}
}

func incrementVisits(a *domain.Analytics, date string) {
	for i := range a.Visits {
		if a.Visits[i].Date == date {
			a.Visits[i].Count++
			return
		}
	}
	a.Visits = append(a.Visits, domain.DailyVisits{Date: date, Count: 1})
}

func incrementSource(a *domain.Analytics, name string) {
	for i := range a.Sources {
		if a.Sources[i].Name == name {
			a.Sources[i].Count++
			return
		}
	}
	a.Sources = append(a.Sources, domain.SourceCount{Name: name, Count: 1})
}

// prune keeps days whose UTC midnight falls after now minus the retention
// window, for both daily visits and unique visitor sets. Visits stay sorted
// by date.
func prune(a *domain.Analytics, now time.Time) {
	cutoff := now.Add(-AnalyticsRetention)
	keep := func(date string) bool {
		day, err := time.Parse(domain.DateLayout, date)
		return err == nil && day.After(cutoff)
	}

	visits := make([]domain.DailyVisits, 0, len(a.Visits))
	for _, v := range a.Visits {
		if keep(v.Date) {
			visits = append(visits, v)
		}
	}
	sort.SliceStable(visits, func(i, j int) bool {
		return visits[i].Date < visits[j].Date
	})
	a.Visits = visits

	for date := range a.UniqueVisitors {
		if !keep(date) {
			delete(a.UniqueVisitors, date)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
