package user

import (
	"context"

	"farmdirect-be/internal/logger"

	"go.uber.org/zap"
)

type RegisterParams struct {
	Username     string
	Password     string
	Role         Role
	Email        string
	Name         string
	Phone        string
	Address      string
	ProfileImage string
}

type Service interface {
	Register(ctx context.Context, params RegisterParams) (string, User, error)
	Login(ctx context.Context, username, password string) (string, User, error)
	GetByID(ctx context.Context, id int64) (User, error)
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{repo: repo, jwtSecret: jwtSecret}
}

func (s *service) Register(ctx context.Context, params RegisterParams) (string, User, error) {
	log := logger.FromCtx(ctx)

	if !ValidRole(params.Role) {
		return "", User{}, ErrInvalidRole
	}

	hashed, err := HashPassword(params.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", User{}, err
	}

	u, err := s.repo.Create(ctx, User{
		Username:     params.Username,
		Password:     hashed,
		Role:         params.Role,
		Email:        params.Email,
		Name:         params.Name,
		Phone:        params.Phone,
		Address:      params.Address,
		ProfileImage: params.ProfileImage,
	})
	if err != nil {
		log.Warn("failed to create user", zap.String("username", params.Username), zap.Error(err))
		return "", User{}, err
	}

	token, err := GenerateJWT(s.jwtSecret, u.ID, u.Role, u.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Int64("user_id", u.ID), zap.Error(err))
		return "", User{}, err
	}

	log.Info("user registered",
		zap.Int64("user_id", u.ID),
		zap.String("role", string(u.Role)),
	)

	return token, u, nil
}

func (s *service) Login(ctx context.Context, username, password string) (string, User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, u.Password) {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateJWT(s.jwtSecret, u.ID, u.Role, u.Email)
	return token, u, err
}

func (s *service) GetByID(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}
