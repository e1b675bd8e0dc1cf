package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"webnova-quiz-service/internal/domain"
)

// UserLedger stores accounts and progress. Reward and spend run in one
// transaction that locks the account row, so concurrent calls compose.
type UserLedger struct {
	db    *bun.DB
	clock func() time.Time
}

func NewUserLedger(db *bun.DB) *UserLedger {
	return &UserLedger{db: db, clock: time.Now}
}

func (l *UserLedger) Create(ctx context.Context, account domain.UserAccount) error {
	if account.Level == 0 {
		account.Level = domain.LevelFor(account.TotalPoints)
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = l.clock().UTC()
	}
	if _, err := l.db.NewInsert().Model(newUserRow(account)).Exec(ctx); err != nil {
		if sqlState(err) == codeUniqueViolation {
			return domain.Errorf(domain.KindBadRequest, "Account already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (l *UserLedger) Get(ctx context.Context, userID string) (domain.UserAccount, error) {
	row := new(userRow)
	err := l.db.NewSelect().Model(row).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserAccount{}, domain.ErrUserNotFound
		}
		return domain.UserAccount{}, fmt.Errorf("select user: %w", err)
	}
	return row.account(), nil
}

func (l *UserLedger) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.UserAccount, error) {
	return l.mutate(ctx, "update profile", userID, func(tx bun.Tx, account domain.UserAccount) (domain.UserAccount, error) {
		return update.Apply(account), nil
	})
}

func (l *UserLedger) ApplyReward(ctx context.Context, userID, quizID string, result domain.GradingResult) (domain.UserAccount, error) {
	now := l.clock()
	return l.mutate(ctx, "apply reward", userID, func(tx bun.Tx, account domain.UserAccount) (domain.UserAccount, error) {
		item := domain.NewProgressItem(quizID, result)
		answers := item.Answers
		if answers == nil {
			answers = []string{}
		}
		_, err := tx.NewInsert().
			Model(&progressRow{
				UserID:            userID,
				QuizID:            item.QuizID,
				Score:             item.Score,
				PointsEarned:      item.PointsEarned,
				StreakIncremented: item.StreakIncremented,
				CompletedAt:       item.CompletedAt,
				Answers:           answers,
			}).
			On("CONFLICT (user_id, quiz_id) DO UPDATE").
			Set("score = EXCLUDED.score").
			Set("points_earned = EXCLUDED.points_earned").
			Set("streak_incremented = EXCLUDED.streak_incremented").
			Set("completed_at = EXCLUDED.completed_at").
			Set("answers = EXCLUDED.answers").
			Exec(ctx)
		if err != nil {
			return domain.UserAccount{}, err
		}
		return account.WithReward(result, now), nil
	})
}

func (l *UserLedger) SpendPoints(ctx context.Context, userID string, amount int) (domain.UserAccount, error) {
	return l.mutate(ctx, "spend points", userID, func(tx bun.Tx, account domain.UserAccount) (domain.UserAccount, error) {
		return account.WithSpend(amount)
	})
}

func (l *UserLedger) Progress(ctx context.Context, userID string, limit int) ([]domain.ProgressItem, error) {
	var rows []progressRow
	q := l.db.NewSelect().Model(&rows).Where("user_id = ?", userID).Order("completed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select progress: %w", err)
	}
	items := make([]domain.ProgressItem, len(rows))
	for i, row := range rows {
		items[i] = row.item()
	}
	return items, nil
}

func (l *UserLedger) ProgressStats(ctx context.Context, userID string) (domain.ProgressStats, error) {
	var (
		count int
		avg   float64
	)
	err := l.db.NewSelect().
		Model((*progressRow)(nil)).
		ColumnExpr("count(*)").
		ColumnExpr("coalesce(avg(score), 0)").
		Where("user_id = ?", userID).
		Scan(ctx, &count, &avg)
	if err != nil {
		return domain.ProgressStats{}, fmt.Errorf("progress stats: %w", err)
	}
	return domain.ProgressStats{QuizzesCompleted: count, AverageScore: avg}, nil
}

// mutate locks the account row, applies fn and writes the result back in one transaction.
func (l *UserLedger) mutate(ctx context.Context, op, userID string, fn func(bun.Tx, domain.UserAccount) (domain.UserAccount, error)) (domain.UserAccount, error) {
	var updated domain.UserAccount
	err := l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(userRow)
		if err := tx.NewSelect().Model(row).Where("id = ?", userID).For("UPDATE").Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrUserNotFound
			}
			return err
		}
		next, err := fn(tx, row.account())
		if err != nil {
			return err
		}
		if _, err := tx.NewUpdate().Model(newUserRow(next)).WherePK().Exec(ctx); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return domain.UserAccount{}, err
		}
		return domain.UserAccount{}, classify(op, err)
	}
	return updated, nil
}
