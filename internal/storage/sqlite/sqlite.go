package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auth-api/internal/domain/models"
	"auth-api/internal/storage"

	"github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.sqlite.New"

	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			pass_hash BLOB NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			picture TEXT NOT NULL DEFAULT '',
			dob DATETIME,
			account_created DATETIME NOT NULL,
			articles_published INTEGER NOT NULL DEFAULT 0
		);
`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) SaveUser(ctx context.Context, user models.User) error {
	const op = "storage.sqlite.SaveUser"

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO users (id, username, email, pass_hash, name, location, picture, dob, account_created, articles_published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		user.ID, user.Username, user.Email, user.PassHash,
		user.Name, user.Location, user.Picture, dobValue(user),
		user.AccountCreated, user.ArticlesPublished,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) UserByID(ctx context.Context, id string) (models.User, error) {
	const op = "storage.sqlite.UserByID"

	return s.userBy(ctx, op, "id", id)
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.sqlite.UserByEmail"

	return s.userBy(ctx, op, "email", email)
}

func (s *Storage) UserByUsername(ctx context.Context, username string) (models.User, error) {
	const op = "storage.sqlite.UserByUsername"

	return s.userBy(ctx, op, "username", username)
}

// UpdateUser overwrites the mutable profile columns and the password hash.
// account_created and articles_published are left as stored.
func (s *Storage) UpdateUser(ctx context.Context, user models.User) error {
	const op = "storage.sqlite.UpdateUser"

	stmt, err := s.db.PrepareContext(ctx, `
		UPDATE users SET pass_hash = ?, name = ?, location = ?, picture = ?, dob = ?
		WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx,
		user.PassHash, user.Name, user.Location, user.Picture, dobValue(user), user.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

// userBy looks a user up by one of the unique columns. column is never user input.
func (s *Storage) userBy(ctx context.Context, op, column, value string) (models.User, error) {
	stmt, err := s.db.PrepareContext(ctx, `
		SELECT id, username, email, pass_hash, name, location, picture, dob, account_created, articles_published
		FROM users WHERE `+column+` = ?`)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	var (
		user models.User
		dob  sql.NullTime
	)
	err = stmt.QueryRowContext(ctx, value).Scan(
		&user.ID, &user.Username, &user.Email, &user.PassHash,
		&user.Name, &user.Location, &user.Picture, &dob,
		&user.AccountCreated, &user.ArticlesPublished,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if dob.Valid {
		t := dob.Time.UTC()
		user.DOB = &t
	}
	user.AccountCreated = user.AccountCreated.UTC()

	return user, nil
}

func dobValue(user models.User) sql.NullTime {
	if user.DOB == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *user.DOB, Valid: true}
}
