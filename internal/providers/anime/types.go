package anime

import (
	"errors"
	"fmt"
	"strings"
)

// Summary is the canonical shape of an anime in a list. Fields the API did
// not send are left empty; renderers decide on display defaults.
type Summary struct {
	ID       string
	Title    string
	Poster   string
	Episodes string
	Type     string
}

type Info struct {
	Type      string
	Episodes  string
	Status    string
	Aired     string
	Premiered string
	Duration  string
	Rating    string
	Studios   string
	Genres    string
}

type Detail struct {
	Summary
	JName       string
	Description string
	Info        Info
}

type Suggestion struct {
	ID    string
	Name  string
	JName string
}

type Home struct {
	Trending  []Summary
	Spotlight []Summary
}

// Featured returns trending titles, falling back to spotlight.
func (home Home) Featured() []Summary {
	if len(home.Trending) > 0 {
		return home.Trending
	}
	return home.Spotlight
}

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

var Periods = []Period{PeriodToday, PeriodWeek, PeriodMonth}

var ErrUnknownPeriod = errors.New("unknown top-ten period")

func ParsePeriod(value string) (Period, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return PeriodToday, nil
	}
	for _, period := range Periods {
		if string(period) == trimmed {
			return period, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, value)
}

func (period Period) Label() string {
	switch period {
	case PeriodWeek:
		return "This Week"
	case PeriodMonth:
		return "This Month"
	default:
		return "Today"
	}
}
