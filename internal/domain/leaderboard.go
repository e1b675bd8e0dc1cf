package domain

import "strings"

// Period names a leaderboard view.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodAllTime Period = "all-time"
)

// Periods lists every leaderboard a submission is fanned out to.
var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodAllTime}

// ParsePeriod validates a period name.
func ParsePeriod(raw string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Periods {
		if p == known {
			return p, nil
		}
	}
	return "", Errorf(KindBadRequest, "Unknown leaderboard period %q", raw)
}

// LeaderboardEntry is one user's row in a period. Rows are a derived copy of UserAccount.
type LeaderboardEntry struct {
	UserID   string `json:"-"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Points   int    `json:"points"`
	Streak   int    `json:"streak"`
}

// EntryFor projects an account onto its leaderboard row.
func EntryFor(u UserAccount) LeaderboardEntry {
	return LeaderboardEntry{
		UserID:   u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Points:   u.TotalPoints,
		Streak:   u.CurrentStreak,
	}
}

// RankedEntry is a leaderboard row with its 1-based position.
type RankedEntry struct {
	Rank int `json:"rank"`
	LeaderboardEntry
}

// RankInfo locates one user within a period.
type RankInfo struct {
	CurrentRank      int `json:"currentRank"`
	TotalUsers       int `json:"totalUsers"`
	PointsToNextRank int `json:"pointsToNextRank"`
}
