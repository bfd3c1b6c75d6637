// Package postgres implements the persisted user directory on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"portal/internal/domain"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Directory is a UserDirectory backed by the users table.
type Directory struct {
	db *sqlx.DB
}

// Open connects to the database and returns a Directory over it.
func Open(dsn string) (*Directory, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return NewDirectory(db), nil
}

// NewDirectory creates a Directory on an existing connection pool.
func NewDirectory(db *sqlx.DB) *Directory {
	return &Directory{db: db}
}

// Close releases the underlying connection pool.
func (d *Directory) Close() error {
	return d.db.Close()
}

type userRow struct {
	ID              string `db:"id"`
	Email           string `db:"email"`
	FirstName       string `db:"first_name"`
	LastName        string `db:"last_name"`
	ProfileImageURL string `db:"profile_image_url"`
	ExternalID      string `db:"external_id"`
	IsAdmin         bool   `db:"is_admin"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:              r.ID,
		Email:           r.Email,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		ProfileImageURL: r.ProfileImageURL,
		ExternalID:      r.ExternalID,
		IsAdmin:         r.IsAdmin,
	}
}

// FindByID returns the user with the given id, or (nil, nil) when absent.
func (d *Directory) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return d.findOne(ctx, sq.Eq{"id": id})
}

// FindByEmail returns the user with the given email, or (nil, nil) when absent.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.findOne(ctx, sq.Eq{"email": email})
}

func (d *Directory) findOne(ctx context.Context, where sq.Eq) (*domain.User, error) {
	query, args, err := qb.
		Select("id", "email", "first_name", "last_name", "profile_image_url", "external_id", "is_admin").
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row userRow
	err = d.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// Create inserts a new user record and returns it.
func (d *Directory) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	query, args, err := qb.
		Insert("users").
		Columns("id", "email", "first_name", "last_name", "profile_image_url", "external_id", "is_admin").
		Values(u.ID, u.Email, u.FirstName, u.LastName, u.ProfileImageURL, u.ExternalID, u.IsAdmin).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update applies the patch's non-nil fields to the record. A patch with no
// fields set is a no-op.
func (d *Directory) Update(ctx context.Context, id string, patch domain.UserPatch) error {
	set := map[string]any{}
	if patch.ExternalID != nil {
		set["external_id"] = *patch.ExternalID
	}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.ProfileImageURL != nil {
		set["profile_image_url"] = *patch.ProfileImageURL
	}
	if len(set) == 0 {
		return nil
	}

	query, args, err := qb.
		Update("users").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	_, err = d.db.ExecContext(ctx, query, args...)
	return err
}
