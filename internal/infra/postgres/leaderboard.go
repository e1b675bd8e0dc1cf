package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"webnova-quiz-service/internal/domain"
	"webnova-quiz-service/internal/ranking"
)

// Leaderboard keeps one row per (period, user). Seq records first insertion
// and breaks ties, so equal points keep storage order.
type Leaderboard struct {
	db *bun.DB
}

func NewLeaderboard(db *bun.DB) *Leaderboard {
	return &Leaderboard{db: db}
}

func (l *Leaderboard) Upsert(ctx context.Context, period domain.Period, entry domain.LeaderboardEntry) error {
	row := &entryRow{
		Period:   string(period),
		UserID:   entry.UserID,
		Username: entry.Username,
		Avatar:   entry.Avatar,
		Points:   entry.Points,
		Streak:   entry.Streak,
	}
	_, err := l.db.NewInsert().
		Model(row).
		On("CONFLICT (period, user_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("avatar = EXCLUDED.avatar").
		Set("points = EXCLUDED.points").
		Set("streak = EXCLUDED.streak").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

func (l *Leaderboard) Top(ctx context.Context, period domain.Period, limit int) ([]domain.RankedEntry, error) {
	var rows []entryRow
	q := l.db.NewSelect().
		Model(&rows).
		Where("period = ?", string(period)).
		OrderExpr("points DESC, seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	ranked := make([]domain.RankedEntry, len(rows))
	for i, row := range rows {
		ranked[i] = domain.RankedEntry{Rank: i + 1, LeaderboardEntry: row.entry()}
	}
	return ranked, nil
}

// RankOf counts the rows ahead of the user. An absent user is placed last.
// All reads share one REPEATABLE READ snapshot so the rank never exceeds the total.
func (l *Leaderboard) RankOf(ctx context.Context, period domain.Period, userID string) (domain.RankInfo, error) {
	var info domain.RankInfo
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := l.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		var err error
		info, err = rankOfTx(ctx, tx, period, userID)
		return err
	})
	if err != nil {
		return domain.RankInfo{}, err
	}
	return info, nil
}

func rankOfTx(ctx context.Context, tx bun.Tx, period domain.Period, userID string) (domain.RankInfo, error) {
	total, err := tx.NewSelect().Model((*entryRow)(nil)).Where("period = ?", string(period)).Count(ctx)
	if err != nil {
		return domain.RankInfo{}, fmt.Errorf("count leaderboard: %w", err)
	}
	info := domain.RankInfo{TotalUsers: total, CurrentRank: total}

	own := new(entryRow)
	err = tx.NewSelect().Model(own).Where("period = ? AND user_id = ?", string(period), userID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return info, nil
		}
		return domain.RankInfo{}, fmt.Errorf("select leaderboard entry: %w", err)
	}

	ahead := func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("period = ?", string(period)).
			Where("(points > ? OR (points = ? AND seq < ?))", own.Points, own.Points, own.Seq)
	}
	above, err := tx.NewSelect().Model((*entryRow)(nil)).Apply(ahead).Count(ctx)
	if err != nil {
		return domain.RankInfo{}, fmt.Errorf("count ahead: %w", err)
	}
	info.CurrentRank = above + 1
	if above == 0 {
		return info, nil
	}

	next := new(entryRow)
	err = tx.NewSelect().Model(next).Apply(ahead).OrderExpr("points ASC, seq DESC").Limit(1).Scan(ctx)
	if err != nil {
		return domain.RankInfo{}, fmt.Errorf("select next rank: %w", err)
	}
	info.PointsToNextRank = ranking.Gap(next.Points, own.Points)
	return info, nil
}
