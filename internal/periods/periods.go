// Package periods models the half-year publication windows the portal is
// queried by.
package periods

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Half identifies a half of the calendar year. The numeric value is the
// index into the period bounds table, so SecondHalf is iterated first.
type Half int

const (
	SecondHalf Half = iota // 1 July to 31 December
	FirstHalf              // 1 January to 30 June
)

// Halves lists the halves in iteration order.
var Halves = [2]Half{SecondHalf, FirstHalf}

func (h Half) String() string {
	switch h {
	case SecondHalf:
		return "H2"
	case FirstHalf:
		return "H1"
	default:
		return fmt.Sprintf("Half(%d)", int(h))
	}
}

// escapedDash is how the portal expects '-' inside date parameters.
const escapedDash = "%2D"

// Period is one half-year window of a specific year. Start and End hold the
// escaped day-month prefixes (for example "1%2DJul%2D"); the year is appended
// when rendering.
type Period struct {
	Half  Half
	Year  int
	Start string
	End   string
}

// StartParam renders the publishFrom query value, e.g. "1%2DJul%2D2021".
func (p Period) StartParam() string {
	return p.Start + strconv.Itoa(p.Year)
}

// EndParam renders the publishTo query value, e.g. "31%2DDec%2D2021".
func (p Period) EndParam() string {
	return p.End + strconv.Itoa(p.Year)
}

// StartLabel is StartParam with the escaped dashes decoded, e.g. "1-Jul-2021".
func (p Period) StartLabel() string {
	return Unescape(p.StartParam())
}

// EndLabel is EndParam with the escaped dashes decoded, e.g. "31-Dec-2021".
func (p Period) EndLabel() string {
	return Unescape(p.EndParam())
}

// Label renders the period for logs, e.g. "1-Jul-2021..31-Dec-2021".
func (p Period) Label() string {
	return p.StartLabel() + ".." + p.EndLabel()
}

func (p Period) String() string {
	return fmt.Sprintf("%s-%d", p.Half, p.Year)
}

// Unescape decodes the portal's %2D escapes to '-'. Nothing else is decoded.
func Unescape(s string) string {
	return strings.ReplaceAll(s, escapedDash, "-")
}

// FirstHalfOpen reports whether now is strictly before 1 July of now's year,
// in now's location. While it is true the current year's January to June
// window has not closed yet.
func FirstHalfOpen(now time.Time) bool {
	july := time.Date(now.Year(), time.July, 1, 0, 0, 0, 0, now.Location())
	return now.Before(july)
}
