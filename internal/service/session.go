package service

import (
	"context"
	"errors"

	"github.com/RyanFidelis/soccergear-storefront/internal/backend"
	"github.com/RyanFidelis/soccergear-storefront/internal/model"
	"github.com/RyanFidelis/soccergear-storefront/internal/promo"
	"github.com/RyanFidelis/soccergear-storefront/internal/validation"
)

// RegisterUser проверяет данные регистрации, создаёт пользователя на бэкенде
// и инициализирует его локальное состояние: зеркало профиля и стартовые купоны.
func (s *Service) RegisterUser(ctx context.Context, req backend.RegisterRequest) (*model.User, error) {
	if !validation.IsValidFullName(req.Name) {
		return nil, ErrInvalidName
	}
	if !validation.IsValidEmail(req.Email) {
		return nil, ErrInvalidEmail
	}
	if req.Telefone != "" && !validation.IsValidPhone(req.Telefone) {
		return nil, ErrInvalidPhone
	}
	if !validation.IsValidPassword(req.Password) {
		return nil, ErrInvalidPassword
	}

	u, err := s.backend.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	ns := UserNamespace(u.ID)
	if err := s.repo.SaveProfile(ctx, ns, u); err != nil {
		return nil, err
	}
	if err := s.repo.SaveCoupons(ctx, ns, promo.WelcomeCoupons()); err != nil {
		return nil, err
	}

	return u, nil
}

// LoginUser аутентифицирует пользователя на бэкенде и обновляет зеркало профиля.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*model.User, error) {
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, ErrInvalidPassword
	}

	u, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveProfile(ctx, UserNamespace(u.ID), u); err != nil {
		return nil, err
	}
	return u, nil
}

// Profile возвращает профиль пользователя. Свежие данные запрашиваются у
// бэкенда и зеркалируются; при недоступности бэкенда возвращается последняя
// сохранённая копия, если она есть.
func (s *Service) Profile(ctx context.Context, userID int64) (*model.User, error) {
	ns := UserNamespace(userID)

	u, err := s.backend.GetUser(ctx, userID)
	if err != nil {
		var beErr *backend.Error
		if !errors.As(err, &beErr) {
			if cached, found, cacheErr := s.repo.Profile(ctx, ns); cacheErr == nil && found {
				return cached, nil
			}
		}
		return nil, err
	}

	if err := s.repo.SaveProfile(ctx, ns, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile отправляет частичное обновление профиля на бэкенд
// и зеркалирует результат.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, update backend.UserUpdate) (*model.User, error) {
	if update.Name != nil && !validation.IsValidFullName(*update.Name) {
		return nil, ErrInvalidName
	}
	if update.Telefone != nil && *update.Telefone != "" && !validation.IsValidPhone(*update.Telefone) {
		return nil, ErrInvalidPhone
	}
	if update.Password != nil && !validation.IsValidPassword(*update.Password) {
		return nil, ErrInvalidPassword
	}

	u, err := s.backend.UpdateUser(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveProfile(ctx, UserNamespace(userID), u); err != nil {
		return nil, err
	}
	return u, nil
}
