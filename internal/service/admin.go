package service

import (
	"context"
	"encoding/json"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

// Административные действия над заказом.
const (
	OrderActionApprove = "aprovar"
	OrderActionReject  = "rejeitar"
)

// AllOrders возвращает все заказы магазина.
func (s *Service) AllOrders(ctx context.Context) ([]model.Order, error) {
	return s.backend.ListOrders(ctx)
}

// Clients возвращает список клиентов магазина.
func (s *Service) Clients(ctx context.Context) ([]model.User, error) {
	return s.backend.ListClients(ctx)
}

// DashboardChart возвращает данные графика продаж без интерпретации.
func (s *Service) DashboardChart(ctx context.Context) (json.RawMessage, error) {
	return s.backend.DashboardChart(ctx)
}

// UpdateOrderStatus применяет административное действие к заказу:
// "aprovar" либо "rejeitar". Уведомление о смене статуса пользователь
// получит через фоновый опрос заказов.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, acao string) error {
	if acao != OrderActionApprove && acao != OrderActionReject {
		return ErrInvalidOrderAction
	}
	if orderID <= 0 {
		return validationError("pedido inválido")
	}
	return s.backend.SetOrderStatus(ctx, orderID, acao)
}
