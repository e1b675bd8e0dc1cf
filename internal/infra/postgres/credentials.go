package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"webnova-quiz-service/internal/domain"
)

type CredentialStore struct {
	db *bun.DB
}

func NewCredentialStore(db *bun.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) Create(ctx context.Context, cred domain.Credential) error {
	row := &credentialRow{Email: cred.Email, UserID: cred.UserID, PasswordHash: cred.PasswordHash}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if sqlState(err) == codeUniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (domain.Credential, error) {
	row := new(credentialRow)
	if err := s.db.NewSelect().Model(row).Where("email = ?", email).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Credential{}, domain.ErrUserNotFound
		}
		return domain.Credential{}, fmt.Errorf("select credential: %w", err)
	}
	return domain.Credential{UserID: row.UserID, Email: row.Email, PasswordHash: row.PasswordHash}, nil
}

func (s *CredentialStore) Delete(ctx context.Context, email string) error {
	if _, err := s.db.NewDelete().Model((*credentialRow)(nil)).Where("email = ?", email).Exec(ctx); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
