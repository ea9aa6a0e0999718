package types

import "time"

// RankDateFormat is the calendar-date key used for daily history entries.
const RankDateFormat = "2006-01-02"

// MaxDailyHistory caps the daily rank history; oldest entries are evicted
// beyond this window.
const MaxDailyHistory = 365

// Period is a leaderboard time window.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// RankEntry is one daily observation of an item's leaderboard position.
type RankEntry struct {
	Rank int    `bson:"rank" json:"rank"`
	Date string `bson:"date" json:"date"`
}

// Ranking holds an item's leaderboard trajectory. Weekly and monthly are
// plain last-seen values; daily observations accumulate into DailyHistory,
// keyed by calendar date with last-write-wins per date. Language-scoped
// leaderboards nest one level under Languages.
type Ranking struct {
	Weekly       int                 `bson:"weekly,omitempty"        json:"weekly,omitempty"`
	Monthly      int                 `bson:"monthly,omitempty"       json:"monthly,omitempty"`
	DailyHistory []RankEntry         `bson:"daily_history,omitempty" json:"daily_history,omitempty"`
	Languages    map[string]*Ranking `bson:"languages,omitempty"     json:"languages,omitempty"`
}

// Observation is a single rank sighting from one crawl of one leaderboard.
type Observation struct {
	Period   Period
	Rank     int
	Language string // empty for the global leaderboard
	Date     time.Time
}

// NewObservation builds an Observation dated now.
func NewObservation(period Period, rank int, language string) Observation {
	return Observation{Period: period, Rank: rank, Language: language, Date: time.Now().UTC()}
}

// Apply merges an observation into the ranking. Daily observations collapse
// by calendar date (a second sighting the same day replaces the earlier rank)
// and the history is capped at MaxDailyHistory with oldest-first eviction.
// Weekly and monthly overwrite their scalar fields and leave the history
// untouched. A language-scoped observation recurses into that language's
// nested ranking.
func (r *Ranking) Apply(obs Observation) {
	if obs.Language != "" {
		if r.Languages == nil {
			r.Languages = make(map[string]*Ranking)
		}
		lr := r.Languages[obs.Language]
		if lr == nil {
			lr = &Ranking{}
			r.Languages[obs.Language] = lr
		}
		scoped := obs
		scoped.Language = ""
		lr.Apply(scoped)
		return
	}

	switch obs.Period {
	case PeriodWeekly:
		r.Weekly = obs.Rank
	case PeriodMonthly:
		r.Monthly = obs.Rank
	case PeriodDaily:
		date := obs.Date.UTC().Format(RankDateFormat)
		for i := range r.DailyHistory {
			if r.DailyHistory[i].Date == date {
				r.DailyHistory[i].Rank = obs.Rank
				return
			}
		}
		r.DailyHistory = append(r.DailyHistory, RankEntry{Rank: obs.Rank, Date: date})
		if n := len(r.DailyHistory); n > MaxDailyHistory {
			r.DailyHistory = r.DailyHistory[n-MaxDailyHistory:]
		}
	}
}

// Merge folds every observation represented by incoming into r. Incoming
// daily entries apply date-by-date; incoming weekly/monthly overwrite when
// set; language buckets recurse.
func (r *Ranking) Merge(incoming *Ranking) {
	if incoming == nil {
		return
	}
	if incoming.Weekly != 0 {
		r.Weekly = incoming.Weekly
	}
	if incoming.Monthly != 0 {
		r.Monthly = incoming.Monthly
	}
	for _, e := range incoming.DailyHistory {
		d, err := time.Parse(RankDateFormat, e.Date)
		if err != nil {
			continue
		}
		r.Apply(Observation{Period: PeriodDaily, Rank: e.Rank, Date: d})
	}
	for lang, lr := range incoming.Languages {
		if r.Languages == nil {
			r.Languages = make(map[string]*Ranking)
		}
		dst := r.Languages[lang]
		if dst == nil {
			dst = &Ranking{}
			r.Languages[lang] = dst
		}
		dst.Merge(lr)
	}
}
