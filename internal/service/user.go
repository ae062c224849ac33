package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

// UserService — операции над учётными записями.
type UserService interface {
	Create(ctx context.Context, user models.User) models.Result[models.User]
	Get(ctx context.Context, apiKey string) models.Result[models.User]
	Update(ctx context.Context, apiKey string, user models.User) models.Result[models.User]
	Remove(ctx context.Context, apiKey string) models.Result[models.User]
	Promote(ctx context.Context, fromKey, toKey string) models.Result[models.User]
	// CheckAdmin никогда не возвращает ошибку: любой сбой поиска означает false.
	CheckAdmin(ctx context.Context, apiKey string) bool
}

type userService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage) UserService {
	return &userService{
		log:      log,
		userRepo: userRepo,
	}
}

// Create регистрирует пользователя с новым apiKey.
// Права администратора и заказы из входных данных игнорируются.
func (s *userService) Create(ctx context.Context, user models.User) models.Result[models.User] {
	const op = "service.UserService.Create"
	logger := s.log.With(slog.String("op", op))

	user.APIKey = uuid.NewString()
	user.Admin = false
	user.Orders = models.Orders{}

	created, err := s.userRepo.CreateUser(ctx, &user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			// запись не создана, ключ повторился
			logger.Error("generated apiKey collided", slog.Any("error", err))
			return models.Fail[models.User](msgUnknownError)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return models.FailWith[models.User](err)
	}

	logger.Info("user created", slog.String("apiKey", created.APIKey))
	return models.Ok(*created, msgUserCreated)
}

func (s *userService) Get(ctx context.Context, apiKey string) models.Result[models.User] {
	const op = "service.UserService.Get"

	user, err := s.userRepo.GetUserByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Fail[models.User](msgUserNotFound)
		}
		s.log.Error("failed to get user", slog.String("op", op), slog.Any("error", err))
		return models.FailWith[models.User](err)
	}
	return models.Ok(*user, "")
}

// Update сначала проверяет, что пользователь есть, затем условно перезаписывает имя и email.
func (s *userService) Update(ctx context.Context, apiKey string, user models.User) models.Result[models.User] {
	const op = "service.UserService.Update"
	logger := s.log.With(slog.String("op", op), slog.String("apiKey", apiKey))

	if exists := s.Get(ctx, apiKey); !exists.Success {
		if exists.Err != nil {
			return exists
		}
		return models.Fail[models.User](msgUserNotExists)
	}

	updated, err := s.userRepo.UpdateUser(ctx, apiKey, &user)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// запись удалили между проверкой и обновлением
			return models.Fail[models.User](msgUserNotExists)
		}
		logger.Error("failed to update user", slog.Any("error", err))
		return models.FailWith[models.User](err)
	}

	logger.Info("user updated")
	return models.Ok(*updated, msgUserUpdated)
}

func (s *userService) Remove(ctx context.Context, apiKey string) models.Result[models.User] {
	const op = "service.UserService.Remove"
	logger := s.log.With(slog.String("op", op), slog.String("apiKey", apiKey))

	if err := s.userRepo.DeleteUser(ctx, apiKey); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Fail[models.User](msgUserNotExists)
		}
		logger.Error("failed to delete user", slog.Any("error", err))
		return models.FailWith[models.User](err)
	}

	logger.Info("user deleted")
	return models.Done[models.User](msgUserDeleted)
}

// Promote выдаёт права администратора пользователю toKey.
// Выполнить операцию может только существующий администратор fromKey.
func (s *userService) Promote(ctx context.Context, fromKey, toKey string) models.Result[models.User] {
	const op = "service.UserService.Promote"
	logger := s.log.With(slog.String("op", op), slog.String("from", fromKey), slog.String("to", toKey))

	if !s.CheckAdmin(ctx, fromKey) {
		logger.Warn("promotion rejected: requester is not an admin")
		return models.Fail[models.User](msgPromoteForbidden)
	}

	if exists := s.Get(ctx, toKey); !exists.Success {
		if exists.Err != nil {
			return exists
		}
		return models.Fail[models.User](msgPromoteTarget)
	}

	if err := s.userRepo.SetAdmin(ctx, toKey); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Fail[models.User](msgPromoteTarget)
		}
		logger.Error("failed to promote user", slog.Any("error", err))
		return models.FailWith[models.User](err)
	}

	logger.Info("user promoted")
	return models.Done[models.User](msgUserPromoted)
}

func (s *userService) CheckAdmin(ctx context.Context, apiKey string) bool {
	const op = "service.UserService.CheckAdmin"

	if apiKey == "" {
		return false
	}
	admin, err := s.userRepo.IsAdmin(ctx, apiKey)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			s.log.Error("failed to check admin flag", slog.String("op", op), slog.Any("error", err))
		}
		return false
	}
	return admin
}
