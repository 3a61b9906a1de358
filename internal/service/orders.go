package service

import (
	"context"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

// MyOrders возвращает заказы пользователя с бэкенда. Отклонённые заказы
// скрываются, пока includeRejected не установлен.
func (s *Service) MyOrders(ctx context.Context, userID int64, includeRejected bool) ([]model.Order, error) {
	orders, err := s.backend.MyOrders(ctx, userID)
	if err != nil {
		return nil, err
	}

	if includeRejected {
		return orders, nil
	}

	filtered := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == model.OrderStatusRejeitado {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered, nil
}
