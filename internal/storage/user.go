package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/storefront/internal/domain/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// UserStorage описывает методы для работы с таблицей пользователей.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
	// UpdateUser перезаписывает имя, фамилию и email, только если запись существует.
	UpdateUser(ctx context.Context, apiKey string, user *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, apiKey string) error
	SetAdmin(ctx context.Context, apiKey string) error
	IsAdmin(ctx context.Context, apiKey string) (bool, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

const userColumns = "api_key, first_name, last_name, email, admin, orders"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.APIKey, &user.FirstName, &user.LastName, &user.Email, &user.Admin, &user.Orders); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUser вставляет пользователя и сразу читает сохранённую запись.
// Новый пользователь всегда без прав администратора и без заказов.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		"INSERT INTO users (api_key, first_name, last_name, email, admin, orders) VALUES ($1, $2, $3, $4, FALSE, '[]'::jsonb) RETURNING "+userColumns,
		user.APIKey, user.FirstName, user.LastName, user.Email,
	)
	created, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return nil, fmt.Errorf("%w: %s", ErrUserExists, user.APIKey)
		}
		return nil, err
	}
	return created, nil
}

func (r *userRepository) GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE api_key = $1", apiKey)
	return scanUser(row)
}

func (r *userRepository) UpdateUser(ctx context.Context, apiKey string, user *models.User) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		"UPDATE users SET first_name = $1, last_name = $2, email = $3 WHERE api_key = $4 RETURNING "+userColumns,
		user.FirstName, user.LastName, user.Email, apiKey,
	)
	return scanUser(row)
}

func (r *userRepository) DeleteUser(ctx context.Context, apiKey string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE api_key = $1", apiKey)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrUserNotFound)
}

func (r *userRepository) SetAdmin(ctx context.Context, apiKey string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET admin = TRUE WHERE api_key = $1", apiKey)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrUserNotFound)
}

func (r *userRepository) IsAdmin(ctx context.Context, apiKey string) (bool, error) {
	var admin bool
	err := r.db.QueryRowContext(ctx, "SELECT admin FROM users WHERE api_key = $1", apiKey).Scan(&admin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return admin, nil
}

// expectAffected возвращает notFound, если условная операция не затронула ни одной строки.
func expectAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
