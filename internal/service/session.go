package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	security "github.com/linemk/storefront/internal/jwt-new"
	"github.com/linemk/storefront/internal/storage"
)

// Session — выданный токен и его время жизни в секундах.
type Session struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

type SessionService interface {
	Login(ctx context.Context, apiKey string) models.Result[Session]
}

type sessionService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
}

func NewSessionService(log *slog.Logger, userRepo storage.UserStorage, secret string, tokenTTL time.Duration, now func() time.Time) SessionService {
	return &sessionService{
		log:      log,
		userRepo: userRepo,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      now,
	}
}

// Login выдаёт JWT существующему пользователю.
func (s *sessionService) Login(ctx context.Context, apiKey string) models.Result[Session] {
	const op = "service.SessionService.Login"
	logger := s.log.With(slog.String("op", op))

	if _, err := s.userRepo.GetUserByAPIKey(ctx, apiKey); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Fail[Session](msgUserNotFound)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return models.FailWith[Session](err)
	}

	token, err := security.NewToken(apiKey, s.secret, s.now(), s.tokenTTL)
	if err != nil {
		logger.Error("failed to sign token", slog.Any("error", err))
		return models.FailWith[Session](err)
	}

	return models.Ok(Session{Token: token, ExpiresIn: int64(s.tokenTTL / time.Second)}, msgSessionCreated)
}
