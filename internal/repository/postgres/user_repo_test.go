package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"gaterepo/internal/domain"
)

func TestUserRepository_UpsertByGitHubID(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	created := now.Add(-48 * time.Hour)
	mock.ExpectQuery(`INSERT INTO users (.+) ON CONFLICT \(github_id\) DO UPDATE`).
		WithArgs(int64(42), "octocat", "The Octocat", "octo@example.com", "https://avatars.example.com/42", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("user-uuid-1", created))

	u := &domain.User{
		GitHubID: 42, Login: "octocat", Name: "The Octocat",
		Email: "octo@example.com", AvatarURL: "https://avatars.example.com/42",
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, NewUserRepository(db).UpsertByGitHubID(ctx, u))
	require.Equal(t, "user-uuid-1", u.ID)
	// A re-login keeps the original creation timestamp.
	require.Equal(t, created, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name:   "success",
			userID: "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				now := time.Now()
				mock.ExpectQuery(`SELECT id, github_id, login, name, email, avatar_url, created_at, updated_at\s+FROM users\s+WHERE id = \$1`).
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "github_id", "login", "name", "email", "avatar_url", "created_at", "updated_at"}).
						AddRow("user-1", int64(42), "octocat", "The Octocat", "octo@example.com", "", now, now))
			},
			wantErr: false,
		},
		{
			name:   "not found",
			userID: "user-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, github_id, login, name, email, avatar_url, created_at, updated_at`).
					WithArgs("user-missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errIs:   domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)
			got, err := NewUserRepository(db).GetByID(ctx, tt.userID)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, "octocat", got.Login)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
