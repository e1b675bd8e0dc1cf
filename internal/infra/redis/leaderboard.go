package redis

import (
	"context"
	"encoding/json"
	"math"

	"github.com/redis/go-redis/v9"

	"webnova-quiz-service/internal/domain"
)

// seqSpace bounds how many distinct users a period can hold while keeping
// insertion order as the tie-break inside the sorted-set score.
const seqSpace = 1 << 24

// Leaderboard stores each period as a sorted set plus a row hash:
//
//	ZADD lb:{period} score userID
//	HSET lb:{period}:rows userID <json>
//	HSET lb:{period}:seq  userID n
//
// score = points*seqSpace + (seqSpace-1-n), so equal points keep first-seen order.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func (l *Leaderboard) Upsert(ctx context.Context, period domain.Period, entry domain.LeaderboardEntry) error {
	seq, err := l.sequence(ctx, period, entry.UserID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(storedEntry(entry))
	if err != nil {
		return err
	}

	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, setKey(period), redis.Z{Score: encodeScore(entry.Points, seq), Member: entry.UserID})
		pipe.HSet(ctx, rowsKey(period), entry.UserID, raw)
		return nil
	})
	if err != nil {
		return wrap("upsert leaderboard", err)
	}
	return nil
}

func (l *Leaderboard) Top(ctx context.Context, period domain.Period, limit int) ([]domain.RankedEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := l.client.ZRevRange(ctx, setKey(period), 0, stop).Result()
	if err != nil {
		return nil, wrap("top leaderboard", err)
	}
	if len(ids) == 0 {
		return []domain.RankedEntry{}, nil
	}

	rows, err := l.client.HMGet(ctx, rowsKey(period), ids...).Result()
	if err != nil {
		return nil, wrap("load leaderboard rows", err)
	}
	ranked := make([]domain.RankedEntry, 0, len(ids))
	for i, id := range ids {
		entry := domain.LeaderboardEntry{UserID: id}
		if s, ok := rows[i].(string); ok {
			var row entryRow
			if err := json.Unmarshal([]byte(s), &row); err == nil {
				entry = row.entry(id)
			}
		}
		ranked = append(ranked, domain.RankedEntry{Rank: i + 1, LeaderboardEntry: entry})
	}
	return ranked, nil
}

// RankOf reports the user's position. An absent user is placed last.
func (l *Leaderboard) RankOf(ctx context.Context, period domain.Period, userID string) (domain.RankInfo, error) {
	pipe := l.client.Pipeline()
	rankCmd := pipe.ZRevRank(ctx, setKey(period), userID)
	cardCmd := pipe.ZCard(ctx, setKey(period))
	ownCmd := pipe.ZScore(ctx, setKey(period), userID)
	if _, err := pipe.Exec(ctx); err != nil && !isMiss(err) {
		return domain.RankInfo{}, wrap("rank of", err)
	}

	total := int(cardCmd.Val())
	info := domain.RankInfo{TotalUsers: total, CurrentRank: total}
	rank, err := rankCmd.Result()
	if err != nil {
		if isMiss(err) {
			return info, nil
		}
		return domain.RankInfo{}, wrap("rank of", err)
	}
	info.CurrentRank = int(rank) + 1
	if rank == 0 {
		return info, nil
	}

	above, err := l.client.ZRevRangeWithScores(ctx, setKey(period), rank-1, rank-1).Result()
	if err != nil {
		return domain.RankInfo{}, wrap("rank neighbour", err)
	}
	if len(above) == 1 {
		if diff := decodePoints(above[0].Score) - decodePoints(ownCmd.Val()); diff > 0 {
			info.PointsToNextRank = diff
		}
	}
	return info, nil
}

// sequence returns the user's first-seen position in the period, assigning one if needed.
func (l *Leaderboard) sequence(ctx context.Context, period domain.Period, userID string) (int64, error) {
	seq, err := l.client.HGet(ctx, seqKey(period), userID).Int64()
	if err == nil {
		return seq, nil
	}
	if !isMiss(err) {
		return 0, wrap("read sequence", err)
	}
	next, err := l.client.Incr(ctx, counterKey(period)).Result()
	if err != nil {
		return 0, wrap("next sequence", err)
	}
	if _, err := l.client.HSetNX(ctx, seqKey(period), userID, next).Result(); err != nil {
		return 0, wrap("store sequence", err)
	}
	// A concurrent first upsert may have won the HSETNX.
	seq, err = l.client.HGet(ctx, seqKey(period), userID).Int64()
	if err != nil {
		return 0, wrap("read sequence", err)
	}
	return seq, nil
}

func encodeScore(points int, seq int64) float64 {
	return float64(points)*seqSpace + float64(seqSpace-1-seq%seqSpace)
}

func decodePoints(score float64) int {
	return int(math.Floor(score / seqSpace))
}

type entryRow struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Points   int    `json:"points"`
	Streak   int    `json:"streak"`
}

func storedEntry(e domain.LeaderboardEntry) entryRow {
	return entryRow{Username: e.Username, Avatar: e.Avatar, Points: e.Points, Streak: e.Streak}
}

func (r entryRow) entry(userID string) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{UserID: userID, Username: r.Username, Avatar: r.Avatar, Points: r.Points, Streak: r.Streak}
}

func setKey(period domain.Period) string { return "lb:" + string(period) }
func rowsKey(period domain.Period) string { return "lb:" + string(period) + ":rows" }
func seqKey(period domain.Period) string { return "lb:" + string(period) + ":seq" }
func counterKey(period domain.Period) string { return "lb:" + string(period) + ":counter" }
