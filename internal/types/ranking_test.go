package types

import (
	"fmt"
	"testing"
	"time"
)

func day(offset int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestApplyDailyCollapsesByDate(t *testing.T) {
	var r Ranking
	r.Apply(Observation{Period: PeriodDaily, Rank: 10, Date: day(0)})
	r.Apply(Observation{Period: PeriodDaily, Rank: 3, Date: day(0)})

	if len(r.DailyHistory) != 1 {
		t.Fatalf("same-day observations must collapse, got %d entries", len(r.DailyHistory))
	}
	if r.DailyHistory[0].Rank != 3 {
		t.Errorf("later observation must win, got rank %d", r.DailyHistory[0].Rank)
	}
}

func TestApplyDailyHistoryCap(t *testing.T) {
	var r Ranking
	for i := 0; i < MaxDailyHistory+10; i++ {
		r.Apply(Observation{Period: PeriodDaily, Rank: i + 1, Date: day(i)})
	}

	if len(r.DailyHistory) != MaxDailyHistory {
		t.Fatalf("expected history capped at %d, got %d", MaxDailyHistory, len(r.DailyHistory))
	}
	// The 10 oldest entries were evicted, so the series starts at rank 11.
	if r.DailyHistory[0].Rank != 11 {
		t.Errorf("expected oldest-first eviction, first rank is %d", r.DailyHistory[0].Rank)
	}
}

func TestApplyWeeklyMonthlyLeaveHistoryAlone(t *testing.T) {
	var r Ranking
	r.Apply(Observation{Period: PeriodDaily, Rank: 5, Date: day(0)})
	r.Apply(Observation{Period: PeriodWeekly, Rank: 2, Date: day(0)})
	r.Apply(Observation{Period: PeriodMonthly, Rank: 7, Date: day(0)})
	r.Apply(Observation{Period: PeriodWeekly, Rank: 1, Date: day(1)})

	if r.Weekly != 1 || r.Monthly != 7 {
		t.Errorf("scalar overwrite broken: weekly=%d monthly=%d", r.Weekly, r.Monthly)
	}
	if len(r.DailyHistory) != 1 || r.DailyHistory[0].Rank != 5 {
		t.Errorf("weekly/monthly must not touch daily history: %+v", r.DailyHistory)
	}
}

func TestApplyLanguageScopes(t *testing.T) {
	var r Ranking
	r.Apply(Observation{Period: PeriodDaily, Rank: 1, Date: day(0)})
	r.Apply(Observation{Period: PeriodDaily, Rank: 9, Language: "go", Date: day(0)})
	r.Apply(Observation{Period: PeriodWeekly, Rank: 4, Language: "go", Date: day(0)})

	if len(r.DailyHistory) != 1 {
		t.Fatalf("global history polluted by language observation")
	}
	lr := r.Languages["go"]
	if lr == nil {
		t.Fatal("expected a go language bucket")
	}
	if lr.Weekly != 4 || len(lr.DailyHistory) != 1 || lr.DailyHistory[0].Rank != 9 {
		t.Errorf("language bucket wrong: %+v", lr)
	}
}

func TestMergeFoldsIncoming(t *testing.T) {
	existing := &Ranking{
		Weekly:       8,
		DailyHistory: []RankEntry{{Rank: 5, Date: "2026-03-01"}},
		Languages:    map[string]*Ranking{"rust": {Monthly: 3}},
	}
	incoming := &Ranking{
		Monthly: 2,
		DailyHistory: []RankEntry{
			{Rank: 1, Date: "2026-03-01"}, // same date, replaces
			{Rank: 6, Date: "2026-03-02"},
		},
		Languages: map[string]*Ranking{"rust": {Weekly: 9}},
	}

	existing.Merge(incoming)

	if existing.Weekly != 8 {
		t.Errorf("unset incoming weekly must not clear existing, got %d", existing.Weekly)
	}
	if existing.Monthly != 2 {
		t.Errorf("incoming monthly must overwrite, got %d", existing.Monthly)
	}
	if len(existing.DailyHistory) != 2 {
		t.Fatalf("expected 2 daily entries, got %d", len(existing.DailyHistory))
	}
	if existing.DailyHistory[0].Rank != 1 {
		t.Errorf("same-date merge must replace, got %d", existing.DailyHistory[0].Rank)
	}
	rust := existing.Languages["rust"]
	if rust.Monthly != 3 || rust.Weekly != 9 {
		t.Errorf("language merge wrong: %+v", rust)
	}
}

func TestMergeNilIncoming(t *testing.T) {
	r := &Ranking{Weekly: 1}
	r.Merge(nil)
	if r.Weekly != 1 {
		t.Error("nil merge must be a no-op")
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusPendingAnalysis, true},
		{StatusPending, StatusCompleted, true},
		{StatusPendingAnalysis, StatusCompleted, true},
		{StatusCompleted, StatusPublished, true},
		{StatusCompleted, StatusIgnored, true},
		{StatusPending, StatusPublished, false},
		{StatusPublished, StatusPending, false},
		{StatusIgnored, StatusCompleted, false},
		{StatusCompleted, StatusCompleted, true}, // same status is always fine
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_to_%s", tc.from, tc.to), func(t *testing.T) {
			if got := tc.from.CanTransition(tc.to); got != tc.ok {
				t.Errorf("%s.CanTransition(%s) = %v, want %v", tc.from, tc.to, got, tc.ok)
			}
		})
	}
}

func TestItemKey(t *testing.T) {
	item := NewItem(PlatformGitHub, "owner/repo")
	if item.Key() != "github:owner/repo" {
		t.Errorf("unexpected key %q", item.Key())
	}
	if item.Status != StatusPending {
		t.Errorf("new items start pending, got %s", item.Status)
	}
}
