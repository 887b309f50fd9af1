package service

import (
	"testing"
	"time"

	"suprigest/internal/models"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func record(status *string, lastDate *time.Time) models.JustificationRecord {
	return models.JustificationRecord{Status: status, LastDate: lastDate}
}

func TestComputeTotalsClassification(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := NewMetricsService()

	records := []models.JustificationRecord{
		record(strPtr("aprovado"), nil),
		record(strPtr("APROVADO"), nil),
		record(strPtr("approved"), nil),
		record(strPtr("reprovado"), nil),
		record(strPtr("rejected"), nil),
		record(nil, nil),
		record(strPtr("pendente"), nil),
		record(strPtr("something-else"), nil),
	}

	metrics := svc.Compute(records, now)

	if metrics.Totals.Approved != 3 {
		t.Errorf("Expected 3 approved, got %d", metrics.Totals.Approved)
	}
	if metrics.Totals.Rejected != 2 {
		t.Errorf("Expected 2 rejected, got %d", metrics.Totals.Rejected)
	}
	if metrics.Totals.Pending != 3 {
		t.Errorf("Expected 3 pending, got %d", metrics.Totals.Pending)
	}
}

func TestComputeTotalsSumProperty(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := NewMetricsService()

	statuses := []*string{
		nil,
		strPtr(""),
		strPtr("aprovado"),
		strPtr("reprovado"),
		strPtr("approved"),
		strPtr("rejected"),
		strPtr("pendente"),
		strPtr("garbage"),
		strPtr("  aprovado  "),
	}

	var records []models.JustificationRecord
	for _, status := range statuses {
		records = append(records, record(status, timePtr(now)))
	}

	totals := svc.Compute(records, now).Totals
	if got := totals.Approved + totals.Rejected + totals.Pending; got != totals.Total {
		t.Errorf("Status counts %d do not sum to total %d", got, totals.Total)
	}
	if totals.Total != len(records) {
		t.Errorf("Expected total %d, got %d", len(records), totals.Total)
	}
}

func TestApprovalRate(t *testing.T) {
	now := time.Now()
	svc := NewMetricsService()

	records := []models.JustificationRecord{
		record(strPtr("aprovado"), nil),
		record(strPtr("aprovado"), nil),
		record(strPtr("reprovado"), nil),
		record(nil, nil),
	}

	totals := svc.Compute(records, now).Totals
	if totals.ApprovalRate != 50 {
		t.Errorf("Expected approval rate 50, got %f", totals.ApprovalRate)
	}
}

func TestApprovalRateEmptySet(t *testing.T) {
	svc := NewMetricsService()

	metrics := svc.Compute(nil, time.Now())
	if metrics.Totals.ApprovalRate != 0 {
		t.Errorf("Expected approval rate 0 for empty set, got %f", metrics.Totals.ApprovalRate)
	}
	if metrics.Totals.AvgAnalysisHours != 0 {
		t.Errorf("Expected avg latency 0 for empty set, got %f", metrics.Totals.AvgAnalysisHours)
	}
}

func TestRecentWindows(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := NewMetricsService()

	records := []models.JustificationRecord{
		record(nil, timePtr(now.AddDate(0, 0, -1))),  // inside both windows
		record(nil, timePtr(now.AddDate(0, 0, -10))), // only 30-day window
		record(nil, timePtr(now.AddDate(0, 0, -40))), // outside both
		record(nil, nil),                             // no date at all
	}

	totals := svc.Compute(records, now).Totals
	if totals.Last7Days != 1 {
		t.Errorf("Expected 1 record in 7-day window, got %d", totals.Last7Days)
	}
	if totals.Last30Days != 2 {
		t.Errorf("Expected 2 records in 30-day window, got %d", totals.Last30Days)
	}
}

func TestAvgAnalysisLatency(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := NewMetricsService()

	submitted := now.AddDate(0, 0, -2)
	records := []models.JustificationRecord{
		{Status: strPtr("aprovado"), LastDate: timePtr(submitted), DataAnalise: timePtr(submitted.Add(10 * time.Hour))},
		{Status: strPtr("reprovado"), LastDate: timePtr(submitted), DataAnalise: timePtr(submitted.Add(30 * time.Hour))},
		{Status: strPtr("aprovado"), LastDate: timePtr(submitted)}, // not yet analyzed, excluded
	}

	totals := svc.Compute(records, now).Totals
	if totals.AvgAnalysisHours != 20 {
		t.Errorf("Expected mean latency 20h, got %f", totals.AvgAnalysisHours)
	}
}

func TestTrendShapeAndBuckets(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 30, 0, 0, time.UTC)
	svc := NewMetricsService()

	records := []models.JustificationRecord{
		record(strPtr("aprovado"), timePtr(time.Date(2026, 8, 31, 1, 0, 0, 0, time.UTC))),
		record(strPtr("reprovado"), timePtr(time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC))),
		record(nil, timePtr(time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC))),
		record(nil, timePtr(time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC))), // far outside the window
	}

	trend := svc.Compute(records, now).Trend

	if len(trend) != 30 {
		t.Fatalf("Expected 30 trend entries, got %d", len(trend))
	}
	if trend[0].Date != "2026-08-02" {
		t.Errorf("Expected oldest entry 2026-08-02, got %s", trend[0].Date)
	}
	if trend[29].Date != "2026-08-31" {
		t.Errorf("Expected newest entry 2026-08-31, got %s", trend[29].Date)
	}

	last := trend[29]
	if last.Approved != 1 || last.Rejected != 0 || last.Pending != 0 {
		t.Errorf("Unexpected counts for today: %+v", last)
	}

	yesterday := trend[28]
	if yesterday.Rejected != 1 || yesterday.Pending != 1 {
		t.Errorf("Unexpected counts for yesterday: %+v", yesterday)
	}
}

func TestOrganizationRankingOrderAndTies(t *testing.T) {
	now := time.Now()
	svc := NewMetricsService()

	org := func(name string, status *string) models.JustificationRecord {
		return models.JustificationRecord{Organization: strPtr(name), Status: status}
	}

	records := []models.JustificationRecord{
		org("Beta", strPtr("aprovado")),
		org("Beta", strPtr("aprovado")),
		org("Alpha", strPtr("aprovado")),
		org("Alpha", strPtr("reprovado")),
		org("Gamma", nil),
		{Status: strPtr("aprovado")}, // no organization
	}

	rankings := svc.Compute(records, now).TopOrganizations

	if len(rankings.ByTotal) != 4 {
		t.Fatalf("Expected 4 organizations, got %d", len(rankings.ByTotal))
	}
	// Alpha and Beta both have 2; ties break by name ascending
	if rankings.ByTotal[0].Name != "Alpha" || rankings.ByTotal[1].Name != "Beta" {
		t.Errorf("Expected Alpha then Beta on the tie, got %s then %s",
			rankings.ByTotal[0].Name, rankings.ByTotal[1].Name)
	}

	found := false
	for _, entry := range rankings.ByTotal {
		if entry.Name == models.NotInformed {
			found = true
		}
	}
	if !found {
		t.Error("Expected missing organization to rank under the placeholder")
	}

	if rankings.ByApproved[0].Name != "Beta" || rankings.ByApproved[0].Count != 2 {
		t.Errorf("Expected Beta leading approvals, got %+v", rankings.ByApproved[0])
	}
}

func TestRankingTruncatesToFive(t *testing.T) {
	now := time.Now()
	svc := NewMetricsService()

	var records []models.JustificationRecord
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, name := range names {
		for j := 0; j <= i; j++ {
			records = append(records, models.JustificationRecord{Organization: strPtr(name)})
		}
	}

	byTotal := svc.Compute(records, now).TopOrganizations.ByTotal
	if len(byTotal) != 5 {
		t.Fatalf("Expected top 5, got %d entries", len(byTotal))
	}
	if byTotal[0].Name != "G" || byTotal[0].Count != 7 {
		t.Errorf("Expected G with 7 on top, got %+v", byTotal[0])
	}
}

func TestRejectionReasonHistogram(t *testing.T) {
	now := time.Now()
	svc := NewMetricsService()

	rejected := func(reason *string) models.JustificationRecord {
		return models.JustificationRecord{Status: strPtr("reprovado"), MotivoReprovacao: reason}
	}

	records := []models.JustificationRecord{
		rejected(strPtr("Sem nota fiscal")),
		rejected(strPtr("Sem nota fiscal")),
		rejected(strPtr("Dados divergentes")),
		rejected(nil),
		rejected(strPtr("   ")),
		{Status: strPtr("aprovado"), MotivoReprovacao: strPtr("should not count")},
	}

	reasons := svc.Compute(records, now).RejectionReasons

	if len(reasons) != 3 {
		t.Fatalf("Expected 3 reason buckets, got %d", len(reasons))
	}
	if reasons[0].Name != "Sem nota fiscal" || reasons[0].Count != 2 {
		t.Errorf("Unexpected leading reason: %+v", reasons[0])
	}

	placeholderCount := 0
	for _, entry := range reasons {
		if entry.Name == models.NotInformed {
			placeholderCount = entry.Count
		}
	}
	if placeholderCount != 2 {
		t.Errorf("Expected 2 records under the placeholder reason, got %d", placeholderCount)
	}
}

func TestFastestAnalysts(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := NewMetricsService()

	analyzed := func(analyst string, hours float64) models.JustificationRecord {
		submitted := now.AddDate(0, 0, -5)
		decided := submitted.Add(time.Duration(hours * float64(time.Hour)))
		return models.JustificationRecord{
			Status:       strPtr("aprovado"),
			AnalisadoPor: strPtr(analyst),
			LastDate:     timePtr(submitted),
			DataAnalise:  timePtr(decided),
		}
	}

	records := []models.JustificationRecord{
		analyzed("slow@example.com", 40),
		analyzed("slow@example.com", 60),
		analyzed("fast@example.com", 2),
		analyzed("fast@example.com", 4),
		analyzed("once@example.com", 1), // only one record, excluded
	}

	analysts := svc.Compute(records, now).FastestAnalysts

	if len(analysts) != 2 {
		t.Fatalf("Expected 2 ranked analysts, got %d", len(analysts))
	}
	if analysts[0].Analyst != "fast@example.com" || analysts[0].AvgHours != 3 {
		t.Errorf("Unexpected fastest analyst: %+v", analysts[0])
	}
	if analysts[1].Analyst != "slow@example.com" || analysts[1].AvgHours != 50 {
		t.Errorf("Unexpected second analyst: %+v", analysts[1])
	}
}
