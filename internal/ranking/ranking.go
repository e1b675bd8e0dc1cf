// Package ranking orders leaderboard rows and locates a user within them.
//
// Rows are expected in storage order. Sorting is stable, so users with equal
// points keep that order; there is no secondary sort key.
package ranking

import (
	"sort"

	"webnova-quiz-service/internal/domain"
)

// Sort returns a copy of rows ordered by points descending.
func Sort(rows []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	sorted := make([]domain.LeaderboardEntry, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})
	return sorted
}

// Top returns the first limit rows with 1-based ranks. A limit <= 0 returns every row.
func Top(rows []domain.LeaderboardEntry, limit int) []domain.RankedEntry {
	sorted := Sort(rows)
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	ranked := make([]domain.RankedEntry, len(sorted))
	for i, row := range sorted {
		ranked[i] = domain.RankedEntry{Rank: i + 1, LeaderboardEntry: row}
	}
	return ranked
}

// Locate finds userID in the full ordering. An absent user is reported in last place.
func Locate(rows []domain.LeaderboardEntry, userID string) domain.RankInfo {
	return LocateSorted(Sort(rows), userID)
}

// LocateSorted is Locate for rows already ordered by points descending.
func LocateSorted(sorted []domain.LeaderboardEntry, userID string) domain.RankInfo {
	info := domain.RankInfo{TotalUsers: len(sorted), CurrentRank: len(sorted)}
	for i, row := range sorted {
		if row.UserID != userID {
			continue
		}
		info.CurrentRank = i + 1
		if i > 0 {
			info.PointsToNextRank = Gap(sorted[i-1].Points, row.Points)
		}
		return info
	}
	return info
}

// Gap is the number of points needed to catch the row above, never negative.
func Gap(above, own int) int {
	if diff := above - own; diff > 0 {
		return diff
	}
	return 0
}
