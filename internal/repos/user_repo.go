package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ektagames/internal/domain"
)

var ErrEmailTaken = errors.New("email already registered")

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT id,email,password_hash FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user with an already hashed password.
func (r *UserRepo) Create(ctx context.Context, email, hash string) (*domain.User, error) {
	u := domain.User{ID: uuid.NewString(), Email: strings.TrimSpace(email), Hash: hash}
	_, err := r.DB.ExecContext(ctx, `INSERT INTO users(id,email,password_hash) VALUES(?,?,?)`, u.ID, u.Email, u.Hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) BindSession(ctx context.Context, sid, userID, email string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(id,user_id,email,last_seen)
                          VALUES(?,?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,email=excluded.email,last_seen=CURRENT_TIMESTAMP`, sid, userID, email)
	return err
}

// SessionUser returns the user bound to sid, or sql.ErrNoRows.
func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var row struct {
		UserID sql.NullString `db:"user_id"`
		Email  sql.NullString `db:"email"`
	}
	if err := r.DB.GetContext(ctx, &row, `SELECT user_id,email FROM sessions WHERE id=?`, sid); err != nil {
		return nil, err
	}
	if !row.UserID.Valid || row.UserID.String == "" {
		return nil, sql.ErrNoRows
	}
	return &domain.User{ID: row.UserID.String, Email: row.Email.String}, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET user_id=NULL,email=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}
