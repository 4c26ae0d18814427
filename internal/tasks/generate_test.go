package tasks

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etenderexport/internal/config"
	"etenderexport/internal/periods"
)

func singleAgencyPlan() Plan {
	plan := DefaultPlan()
	plan.Agencies = []config.Agency{{ID: "ID%2DX", Code: "X"}}
	return plan
}

func TestGenerateExampleMarch(t *testing.T) {
	now := time.Date(2021, time.March, 15, 9, 30, 0, 0, time.UTC)
	got := Generate(singleAgencyPlan(), now)

	require.NotEmpty(t, got)
	first := got[0]
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, periods.SecondHalf, first.Period.Half)
	assert.Equal(t, 2021, first.Period.Year)
	assert.Equal(t, "eTender_X_31-Dec-2021_1-Jul-2021_1.xls", first.Filename)
	assert.Contains(t, first.URL, "agencyUUID=ID%2DX")
	assert.Contains(t, first.URL, "publishFrom=1%2DJul%2D2021")
	assert.Contains(t, first.URL, "publishTo=31%2DDec%2D2021")

	// the open first half of 2021 is skipped, so 2020 follows directly
	second := got[1]
	assert.Equal(t, 2020, second.Period.Year)
	assert.Equal(t, periods.SecondHalf, second.Period.Half)
	assert.Equal(t, "eTender_X_31-Dec-2020_1-Jul-2020_2.xls", second.Filename)

	third := got[2]
	assert.Equal(t, periods.FirstHalf, third.Period.Half)
	assert.Equal(t, "eTender_X_30-Jun-2020_1-Jan-2020_3.xls", third.Filename)

	last := got[len(got)-1]
	assert.Equal(t, "eTender_X_30-Jun-2000_1-Jan-2000_43.xls", last.Filename)
	assert.Len(t, got, 43)
}

func TestGenerateAfterFirstHalfCloses(t *testing.T) {
	now := time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC)
	got := Generate(singleAgencyPlan(), now)

	require.Len(t, got, 44)
	assert.Equal(t, "eTender_X_31-Dec-2021_1-Jul-2021_1.xls", got[0].Filename)
	assert.Equal(t, "eTender_X_30-Jun-2021_1-Jan-2021_2.xls", got[1].Filename)
}

func TestGenerateDefaultPlan(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		perAgency int
	}{
		{"first half open", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), 49},
		{"first half closed", time.Date(2024, time.November, 2, 0, 0, 0, 0, time.UTC), 50},
		{"start year only, first half open", time.Date(2000, time.June, 1, 0, 0, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := DefaultPlan()
			got := Generate(plan, tt.now)
			assert.Len(t, got, tt.perAgency*len(config.Agencies))

			// every agency's counter runs 1..n without gaps
			counts := map[string]int{}
			for _, task := range got {
				counts[task.Agency.Code]++
				assert.Equal(t, counts[task.Agency.Code], task.Seq, task.Filename)
			}
			for _, a := range config.Agencies {
				assert.Equal(t, tt.perAgency, counts[a.Code], a.Code)
			}
		})
	}
}

func TestGenerateInvariants(t *testing.T) {
	now := time.Date(2023, time.April, 4, 13, 0, 0, 0, time.UTC)
	got := Generate(DefaultPlan(), now)

	seen := map[string]bool{}
	urls := map[string]string{}
	for i, task := range got {
		assert.False(t, seen[task.Filename], "duplicate filename %s", task.Filename)
		seen[task.Filename] = true

		prev, dup := urls[task.URL]
		assert.False(t, dup, "%s and %s share a URL", prev, task.Filename)
		urls[task.URL] = task.Filename

		for _, placeholder := range []string{config.PlaceholderAgency, config.PlaceholderStart, config.PlaceholderEnd} {
			assert.NotContains(t, task.URL, placeholder)
		}
		assert.True(t, strings.HasPrefix(task.Filename, "eTender_"))
		assert.True(t, strings.HasSuffix(task.Filename, ".xls"))
		assert.NotContains(t, task.Filename, "%2D")

		assert.False(t, task.Period.Year == 2023 && task.Period.Half == periods.FirstHalf,
			"open first half must not be requested")

		// agencies appear in table order, years descend within an agency
		if i > 0 && got[i-1].Agency == task.Agency {
			prev := got[i-1].Period
			if prev.Year == task.Period.Year {
				assert.Equal(t, periods.SecondHalf, prev.Half)
				assert.Equal(t, periods.FirstHalf, task.Period.Half)
			} else {
				assert.Equal(t, prev.Year-1, task.Period.Year)
			}
		}
	}

	var order []string
	for _, task := range got {
		if len(order) == 0 || order[len(order)-1] != task.Agency.Code {
			order = append(order, task.Agency.Code)
		}
	}
	assert.Equal(t, []string{"TfNSW_RMS", "TfNSW", "TfNSW_Corp", "TfNSW_Tran"}, order)
}

func TestBuildURLChangesWithEachPlaceholder(t *testing.T) {
	template := DefaultPlan().URLTemplate
	agency := config.Agency{ID: "uuid-a", Code: "A"}
	period := periods.Period{Half: periods.SecondHalf, Year: 2021, Start: "1%2DJul%2D", End: "31%2DDec%2D"}
	base := buildURL(template, agency, period)

	withStart := period
	withStart.Start = "2%2DJul%2D"
	withEnd := period
	withEnd.End = "30%2DDec%2D"
	withYear := period
	withYear.Year = 2020

	tests := []struct {
		name   string
		agency config.Agency
		period periods.Period
	}{
		{"agency", config.Agency{ID: "uuid-b", Code: "A"}, period},
		{"start", agency, withStart},
		{"end", agency, withEnd},
		{"year", agency, withYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, buildURL(template, tt.agency, tt.period))
		})
	}

	assert.Contains(t, base, "agencyUUID=uuid-a&")
	assert.Contains(t, base, "publishFrom=1%2DJul%2D2021&")
	assert.Contains(t, base, "publishTo=31%2DDec%2D2021&")
}

func TestGenerateIsDeterministic(t *testing.T) {
	now := time.Date(2022, time.September, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Generate(DefaultPlan(), now), Generate(DefaultPlan(), now))
}

func TestGenerateStartYearInFuture(t *testing.T) {
	plan := DefaultPlan()
	plan.StartYear = 2030
	assert.Empty(t, Generate(plan, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Plan)
		wantErr bool
	}{
		{"default plan", func(*Plan) {}, false},
		{"no agencies", func(p *Plan) { p.Agencies = nil }, true},
		{"duplicate codes", func(p *Plan) {
			p.Agencies = []config.Agency{{ID: "a", Code: "A"}, {ID: "b", Code: "A"}}
		}, true},
		{"empty agency id", func(p *Plan) { p.Agencies = []config.Agency{{Code: "A"}} }, true},
		{"template missing end placeholder", func(p *Plan) {
			p.URLTemplate = "https://example.com/?a=AGENCY_UUID&f=PUB_START"
		}, true},
		{"empty period bound", func(p *Plan) { p.Periods[1].End = "" }, true},
		{"start year too small", func(p *Plan) { p.StartYear = 10 }, true},
		{"missing prefix", func(p *Plan) { p.FilePrefix = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := DefaultPlan()
			tt.mutate(&plan)
			err := plan.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlanFromConfigCopies(t *testing.T) {
	export := config.Default().Export
	plan := PlanFromConfig(export)

	export.Agencies[0].Code = "mutated"
	assert.Equal(t, "TfNSW_RMS", plan.Agencies[0].Code)
	assert.Equal(t, config.PeriodTable, plan.Periods)
}
