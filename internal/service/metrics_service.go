package service

import (
	"sort"
	"strings"
	"time"

	"suprigest/internal/models"
)

const (
	trendDays   = 30
	rankingSize = 5
	// minAnalyzedForRanking keeps one-off reviewers out of the speed
	// ranking.
	minAnalyzedForRanking = 2
)

// MetricsService computes the dashboard aggregates. It is pure: all
// derivations run over the record set passed in, no caching.
type MetricsService struct{}

// NewMetricsService creates a new metrics service
func NewMetricsService() *MetricsService {
	return &MetricsService{}
}

// classify maps a stored status to one of approved, rejected or
// pending. Unknown and absent statuses count as pending.
func classify(status *string) string {
	if status == nil {
		return models.StatusPendente
	}
	switch strings.ToLower(strings.TrimSpace(*status)) {
	case models.StatusAprovado, "approved":
		return models.StatusAprovado
	case models.StatusReprovado, "rejected":
		return models.StatusReprovado
	default:
		return models.StatusPendente
	}
}

// Compute derives the full dashboard payload from the record set.
// The reference time is passed in so the aggregation is testable.
func (s *MetricsService) Compute(records []models.JustificationRecord, now time.Time) *models.DashboardMetrics {
	metrics := &models.DashboardMetrics{
		Totals: s.computeTotals(records, now),
		Trend:  s.computeTrend(records, now),
	}

	metrics.TopOrganizations = s.computeOrganizationRankings(records)
	metrics.RejectionReasons = s.computeRejectionReasons(records)
	metrics.FastestAnalysts = s.computeFastestAnalysts(records)

	return metrics
}

func (s *MetricsService) computeTotals(records []models.JustificationRecord, now time.Time) models.MetricTotals {
	totals := models.MetricTotals{Total: len(records)}

	cutoff7 := now.AddDate(0, 0, -7)
	cutoff30 := now.AddDate(0, 0, -30)

	var latencySum float64
	var latencyCount int

	for _, record := range records {
		switch classify(record.Status) {
		case models.StatusAprovado:
			totals.Approved++
		case models.StatusReprovado:
			totals.Rejected++
		default:
			totals.Pending++
		}

		if record.LastDate != nil {
			if record.LastDate.After(cutoff7) {
				totals.Last7Days++
			}
			if record.LastDate.After(cutoff30) {
				totals.Last30Days++
			}
			if record.DataAnalise != nil {
				latencySum += record.DataAnalise.Sub(*record.LastDate).Hours()
				latencyCount++
			}
		}
	}

	if totals.Total > 0 {
		totals.ApprovalRate = float64(totals.Approved) / float64(totals.Total) * 100
	}
	if latencyCount > 0 {
		totals.AvgAnalysisHours = latencySum / float64(latencyCount)
	}

	return totals
}

// computeTrend buckets records into the last 30 calendar days ending
// today, oldest first. The bucket key is the literal date portion of
// lastdate, with no zone conversion.
func (s *MetricsService) computeTrend(records []models.JustificationRecord, now time.Time) []models.TrendEntry {
	buckets := make(map[string]*models.TrendEntry, trendDays)
	trend := make([]models.TrendEntry, 0, trendDays)

	for i := trendDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		trend = append(trend, models.TrendEntry{Date: date})
	}
	for i := range trend {
		buckets[trend[i].Date] = &trend[i]
	}

	for _, record := range records {
		if record.LastDate == nil {
			continue
		}
		entry, ok := buckets[record.LastDate.Format("2006-01-02")]
		if !ok {
			continue
		}
		switch classify(record.Status) {
		case models.StatusAprovado:
			entry.Approved++
		case models.StatusReprovado:
			entry.Rejected++
		default:
			entry.Pending++
		}
	}

	return trend
}

func organizationName(record models.JustificationRecord) string {
	if record.Organization == nil || strings.TrimSpace(*record.Organization) == "" {
		return models.NotInformed
	}
	return *record.Organization
}

func (s *MetricsService) computeOrganizationRankings(records []models.JustificationRecord) models.RankingGroup {
	byTotal := make(map[string]int)
	byApproved := make(map[string]int)
	byRejected := make(map[string]int)

	for _, record := range records {
		name := organizationName(record)
		byTotal[name]++
		switch classify(record.Status) {
		case models.StatusAprovado:
			byApproved[name]++
		case models.StatusReprovado:
			byRejected[name]++
		}
	}

	return models.RankingGroup{
		ByTotal:    topEntries(byTotal, rankingSize),
		ByApproved: topEntries(byApproved, rankingSize),
		ByRejected: topEntries(byRejected, rankingSize),
	}
}

func (s *MetricsService) computeRejectionReasons(records []models.JustificationRecord) []models.RankingEntry {
	reasons := make(map[string]int)

	for _, record := range records {
		if classify(record.Status) != models.StatusReprovado {
			continue
		}
		reason := models.NotInformed
		if record.MotivoReprovacao != nil && strings.TrimSpace(*record.MotivoReprovacao) != "" {
			reason = *record.MotivoReprovacao
		}
		reasons[reason]++
	}

	return topEntries(reasons, rankingSize)
}

func (s *MetricsService) computeFastestAnalysts(records []models.JustificationRecord) []models.AnalystSpeed {
	type latency struct {
		sum   float64
		count int
	}
	perAnalyst := make(map[string]*latency)

	for _, record := range records {
		if record.AnalisadoPor == nil || strings.TrimSpace(*record.AnalisadoPor) == "" {
			continue
		}
		if record.LastDate == nil || record.DataAnalise == nil {
			continue
		}
		entry, ok := perAnalyst[*record.AnalisadoPor]
		if !ok {
			entry = &latency{}
			perAnalyst[*record.AnalisadoPor] = entry
		}
		entry.sum += record.DataAnalise.Sub(*record.LastDate).Hours()
		entry.count++
	}

	var analysts []models.AnalystSpeed
	for name, entry := range perAnalyst {
		if entry.count < minAnalyzedForRanking {
			continue
		}
		analysts = append(analysts, models.AnalystSpeed{
			Analyst:  name,
			AvgHours: entry.sum / float64(entry.count),
			Count:    entry.count,
		})
	}

	sort.SliceStable(analysts, func(i, j int) bool {
		if analysts[i].AvgHours != analysts[j].AvgHours {
			return analysts[i].AvgHours < analysts[j].AvgHours
		}
		return analysts[i].Analyst < analysts[j].Analyst
	})

	if len(analysts) > rankingSize {
		analysts = analysts[:rankingSize]
	}
	if analysts == nil {
		analysts = []models.AnalystSpeed{}
	}
	return analysts
}

// topEntries sorts a histogram by count descending, ties by name
// ascending, and keeps the first n entries.
func topEntries(histogram map[string]int, n int) []models.RankingEntry {
	entries := make([]models.RankingEntry, 0, len(histogram))
	for name, count := range histogram {
		entries = append(entries, models.RankingEntry{Name: name, Count: count})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
