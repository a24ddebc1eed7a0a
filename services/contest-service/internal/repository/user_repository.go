package repository

import (
	"context"
	"database/sql"
	"errors"

	"dailyart/services/contest-service/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uint64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, username, password_hash, first_place_wins, second_place_wins, third_place_wins, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash,
		&u.FirstPlaceWins, &u.SecondPlaceWins, &u.ThirdPlaceWins, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, username, password_hash, first_place_wins, second_place_wins, third_place_wins, created_at)
		VALUES (?, ?, ?, 0, 0, 0, ?)
	`
	createdAt := user.CreatedAt.UTC()
	result, err := r.db.ExecContext(ctx, query, user.Email, user.Username, user.PasswordHash, createdAt)
	if err != nil {
		return nil, wrapErr("create user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, wrapErr("get user id", err)
	}

	created := *user
	created.ID = uint64(id)
	created.CreatedAt = createdAt
	created.FirstPlaceWins, created.SecondPlaceWins, created.ThirdPlaceWins = 0, 0, 0
	return &created, nil
}

func (r *userRepository) getOne(ctx context.Context, op, where string, arg interface{}) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint64) (*models.User, error) {
	return r.getOne(ctx, "get user", "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "get user by email", "email = ?", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "get user by username", "username = ?", username)
}
