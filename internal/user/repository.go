package user

import (
	"context"
	"database/sql"

	"farmdirect-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = "id, username, password, role, email, name, COALESCE(phone, ''), COALESCE(address, ''), COALESCE(profile_image, '')"

func (r *repository) Create(ctx context.Context, u User) (User, error) {
	log := logger.FromCtx(ctx)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password, role, email, name, phone, address, profile_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		u.Username, u.Password, u.Role, u.Email, u.Name,
		nullable(u.Phone), nullable(u.Address), nullable(u.ProfileImage),
	).Scan(&u.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_username_key":
				return User{}, ErrUsernameExists
			case "users_email_key":
				return User{}, ErrEmailExists
			}
		}
		log.Error("db: failed to insert user",
			zap.String("username", u.Username),
			zap.Error(err),
		)
		return User{}, err
	}

	return u, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.Email, &u.Name, &u.Phone, &u.Address, &u.ProfileImage)

	if err == sql.ErrNoRows {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.Email, &u.Name, &u.Phone, &u.Address, &u.ProfileImage)

	if err == sql.ErrNoRows {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
