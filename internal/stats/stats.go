// Package stats computes template popularity and recent activity across
// all CVs, plus the current user's own totals.
package stats

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/khrees2412/cvbuilder/internal/database"
	"github.com/khrees2412/cvbuilder/internal/gateway"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

// recentDays is the window of the recent activity series
const recentDays = 7

type DesignCount struct {
	Design     string `json:"design"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Count int    `json:"count"`
}

type UserStats struct {
	TotalCVs       int       `json:"total_cvs"`
	MostUsedDesign string    `json:"most_used_design"`
	LastActivity   time.Time `json:"last_activity"`
}

type Statistics struct {
	TotalCVs          int           `json:"total_cvs"`
	DesignsPopularity []DesignCount `json:"designs_popularity"`
	RecentActivity    []DayCount    `json:"recent_activity"`
	User              UserStats     `json:"user"`
}

// Compute derives the statistics. mine must be ordered newest first, as
// gateway.List returns it.
func Compute(all []database.DesignUsage, mine []models.SavedCV, now time.Time) Statistics {
	s := Statistics{
		TotalCVs:          len(all),
		DesignsPopularity: []DesignCount{},
		RecentActivity:    []DayCount{},
	}

	counts := map[string]int{}
	perDay := map[string]int{}
	since := now.AddDate(0, 0, -recentDays)
	for _, u := range all {
		counts[u.Design]++
		if !u.CreatedAt.Before(since) {
			perDay[u.CreatedAt.UTC().Format("2006-01-02")]++
		}
	}

	for design, count := range counts {
		s.DesignsPopularity = append(s.DesignsPopularity, DesignCount{
			Design:     design,
			Count:      count,
			Percentage: int(math.Round(float64(count) / float64(len(all)) * 100)),
		})
	}
	sort.Slice(s.DesignsPopularity, func(i, j int) bool {
		a, b := s.DesignsPopularity[i], s.DesignsPopularity[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Design < b.Design
	})

	for date, count := range perDay {
		s.RecentActivity = append(s.RecentActivity, DayCount{Date: date, Count: count})
	}
	sort.Slice(s.RecentActivity, func(i, j int) bool {
		return s.RecentActivity[i].Date < s.RecentActivity[j].Date
	})

	s.User = userStats(mine)
	return s
}

func userStats(mine []models.SavedCV) UserStats {
	u := UserStats{TotalCVs: len(mine), MostUsedDesign: string(models.DefaultTemplate)}
	if len(mine) == 0 {
		return u
	}
	u.LastActivity = mine[0].UpdatedAt

	counts := map[string]int{}
	for _, cv := range mine {
		counts[string(cv.Document.SelectedTemplate)]++
	}
	best := 0
	for design, count := range counts {
		if count > best || (count == best && design < u.MostUsedDesign) {
			u.MostUsedDesign, best = design, count
		}
	}
	return u
}

// Collect loads design usage and the principal's CVs concurrently and
// computes the statistics.
func Collect(ctx context.Context, store database.Store, gw *gateway.Gateway, now time.Time) (Statistics, error) {
	var all []database.DesignUsage
	var mine []models.SavedCV

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		usage, err := store.DesignUsage(gctx)
		if err != nil {
			return &gateway.RemoteStoreError{Op: "design usage", Err: err}
		}
		all = usage
		return nil
	})
	g.Go(func() error {
		cvs, err := gw.List(gctx)
		if err != nil {
			return err
		}
		mine = cvs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Statistics{}, err
	}
	return Compute(all, mine, now), nil
}
