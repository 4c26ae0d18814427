package tasks

import (
	"strconv"
	"strings"
	"time"

	"etenderexport/internal/config"
	"etenderexport/internal/periods"
)

// DownloadTask is one portal request and the file its response is stored in.
type DownloadTask struct {
	Agency   config.Agency
	Period   periods.Period
	Seq      int
	URL      string
	Filename string
}

func (t DownloadTask) String() string {
	return t.Filename
}

// Generate enumerates every download for the plan as of now.
//
// Agencies are visited in table order. For each, years run from now's year
// down to StartYear, and within a year the July-December window comes before
// January-June. The current year's January-June window is left out while it
// is still open; the current July-December window is always requested.
// Seq restarts at 1 for each agency.
func Generate(plan Plan, now time.Time) []DownloadTask {
	thisYear := now.Year()
	firstHalfOpen := periods.FirstHalfOpen(now)

	var out []DownloadTask
	for _, agency := range plan.Agencies {
		seq := 1
		for year := thisYear; year >= plan.StartYear; year-- {
			for _, half := range periods.Halves {
				if year == thisYear && half == periods.FirstHalf && firstHalfOpen {
					continue
				}

				bounds := plan.Periods[half]
				period := periods.Period{
					Half:  half,
					Year:  year,
					Start: bounds.Start,
					End:   bounds.End,
				}

				out = append(out, DownloadTask{
					Agency:   agency,
					Period:   period,
					Seq:      seq,
					URL:      buildURL(plan.URLTemplate, agency, period),
					Filename: buildFilename(plan, agency, period, seq),
				})
				seq++
			}
		}
	}
	return out
}

func buildURL(template string, agency config.Agency, period periods.Period) string {
	url := strings.ReplaceAll(template, config.PlaceholderAgency, agency.ID)
	url = strings.ReplaceAll(url, config.PlaceholderStart, period.StartParam())
	url = strings.ReplaceAll(url, config.PlaceholderEnd, period.EndParam())
	return url
}

// buildFilename renders <prefix><code>_<end>_<start>_<seq><ext>.
func buildFilename(plan Plan, agency config.Agency, period periods.Period, seq int) string {
	var b strings.Builder
	b.WriteString(plan.FilePrefix)
	b.WriteString(agency.Code)
	b.WriteByte('_')
	b.WriteString(period.EndLabel())
	b.WriteByte('_')
	b.WriteString(period.StartLabel())
	b.WriteByte('_')
	b.WriteString(strconv.Itoa(seq))
	b.WriteString(plan.FileExt)
	return b.String()
}
