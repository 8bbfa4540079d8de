package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

// SeasonOf assigns a calendar month to its season.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Fall
	default:
		return Winter
	}
}

// BySeason describes each season's points separately. Seasons without points
// are omitted. Seasonal significance uses the wider seasonal threshold.
func (e *Engine) BySeason(series Series) (map[Season]Summary, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty series", nutrition.ErrInvalidInput)
	}
	buckets := make(map[Season]Series)
	for _, p := range series {
		s := SeasonOf(p.Date)
		buckets[s] = append(buckets[s], p)
	}

	out := make(map[Season]Summary, len(buckets))
	for season, points := range buckets {
		sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
		summary, err := e.describe(points, e.cfg.SeasonalSignificanceThreshold)
		if err != nil {
			return nil, err
		}
		out[season] = summary
	}
	return out, nil
}
