package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

// Фильтры списка уведомлений.
const (
	FilterAll    = "todas"
	FilterUnread = "nao-lidas"
)

// Notifications возвращает уведомления namespace, отфильтрованные по
// filter: "todas", "nao-lidas" либо категория уведомления.
func (s *Service) Notifications(ctx context.Context, ns, filter string) ([]model.Notification, error) {
	list, err := s.repo.Notifications(ctx, ns)
	if err != nil {
		return nil, err
	}

	if filter == "" || filter == FilterAll {
		return list, nil
	}

	filtered := make([]model.Notification, 0, len(list))
	for _, n := range list {
		switch {
		case filter == FilterUnread && !n.Lida:
			filtered = append(filtered, n)
		case filter == string(n.Categoria):
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}

// MarkNotificationRead помечает уведомление прочитанным.
func (s *Service) MarkNotificationRead(ctx context.Context, ns, id string) error {
	list, err := s.repo.Notifications(ctx, ns)
	if err != nil {
		return err
	}

	changed := false
	for i := range list {
		if list[i].ID == id && !list[i].Lida {
			list[i].Lida = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.repo.SaveNotifications(ctx, ns, list)
}

// MarkAllNotificationsRead помечает все уведомления namespace прочитанными.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, ns string) error {
	list, err := s.repo.Notifications(ctx, ns)
	if err != nil {
		return err
	}

	changed := false
	for i := range list {
		if !list[i].Lida {
			list[i].Lida = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.repo.SaveNotifications(ctx, ns, list)
}

// DeleteNotification удаляет уведомление по идентификатору.
func (s *Service) DeleteNotification(ctx context.Context, ns, id string) error {
	list, err := s.repo.Notifications(ctx, ns)
	if err != nil {
		return err
	}

	updated := list[:0]
	for _, n := range list {
		if n.ID != id {
			updated = append(updated, n)
		}
	}
	return s.repo.SaveNotifications(ctx, ns, updated)
}

// ClearNotifications удаляет все уведомления namespace. Ключи дедупликации
// сохраняются: уже увиденные переходы статусов не возвращаются после очистки.
func (s *Service) ClearNotifications(ctx context.Context, ns string) error {
	return s.repo.SaveNotifications(ctx, ns, nil)
}

// StartOrderUpdates запускает фоновый опрос заказов: каждое изменение статуса
// заказа на бэкенде превращается ровно в одно уведомление пользователя.
func (s *Service) StartOrderUpdates(ctx context.Context) {
	if s.backend == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(s.orderPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.pollOrders(ctx)
			}
		}
	}()
}

func (s *Service) pollOrders(ctx context.Context) {
	namespaces, err := s.repo.UserNamespaces(ctx)
	if err != nil {
		return
	}

	for _, ns := range namespaces {
		userID, ok := ParseUserNamespace(ns)
		if !ok {
			continue
		}

		orders, err := s.backend.MyOrders(ctx, userID)
		if err != nil {
			continue
		}

		for _, o := range orders {
			s.notifyOrderStatus(ctx, ns, o)
		}
	}
}

// notifyOrderStatus добавляет уведомление о статусе заказа, если такая пара
// (заказ, статус) ещё не объявлялась пользователю.
func (s *Service) notifyOrderStatus(ctx context.Context, ns string, o model.Order) {
	categoria, ok := model.CategoryForStatus(o.Status)
	if !ok {
		return
	}

	n := model.Notification{
		ID:         uuid.NewString(),
		ExternalID: orderEventKey(o.ID, o.Status),
		Categoria:  categoria,
		Data:       s.now(),
	}

	switch o.Status {
	case model.OrderStatusAprovado:
		n.Titulo = "Pagamento Aprovado"
		n.Descricao = "Seu pedido foi aprovado e já está sendo preparado para envio."
	case model.OrderStatusRejeitado:
		n.Titulo = "Pedido Recusado"
		n.Descricao = "Não foi possível confirmar o pagamento do seu pedido. Tente novamente."
	case model.OrderStatusAguardando:
		n.Titulo = "Pagamento em análise"
		n.Descricao = "Recebemos seu pedido e ele está aguardando a confirmação do pagamento."
	}

	added, err := s.repo.AppendNotificationIfNew(ctx, ns, n.ExternalID, n)
	if err != nil || !added {
		return
	}
	s.publish(Event{Type: EventNotification, Namespace: ns})
}

// StartPromoUpdates запускает фоновую промо-рассылку: не чаще одного раза в
// интервал каждый пользователь получает новый купон и промо-уведомление.
func (s *Service) StartPromoUpdates(ctx context.Context) {
	if s.promo == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(s.promoPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sendPromos(ctx)
			}
		}
	}()
}

func (s *Service) sendPromos(ctx context.Context) {
	namespaces, err := s.repo.UserNamespaces(ctx)
	if err != nil {
		return
	}

	for _, ns := range namespaces {
		s.sendPromo(ctx, ns)
	}
}

// sendPromo выпускает купон и промо-уведомление для namespace. Отметка
// времени последней рассылки защищает от повторов при перезапусках сервиса.
func (s *Service) sendPromo(ctx context.Context, ns string) {
	sentAt, found, err := s.repo.PromoSentAt(ctx, ns)
	if err != nil {
		return
	}
	if found && s.now().Sub(sentAt) < s.promoPollInterval {
		return
	}

	// Отметка ставится только после успешной рассылки: сбой записи не
	// должен лишать пользователя купона на целый интервал.
	coupon, err := s.GenerateCoupon(ctx, ns)
	if err != nil {
		return
	}

	n := model.Notification{
		ID:        uuid.NewString(),
		Categoria: model.NotificationPromocional,
		Titulo:    "Oferta especial para você!",
		Descricao: "Novo cupom na sua carteira: " + coupon.Codigo + " (" + coupon.Titulo + ").",
		Data:      s.now(),
	}
	if err := s.repo.AppendNotification(ctx, ns, n); err != nil {
		return
	}

	_ = s.repo.SetPromoSentAt(ctx, ns, s.now())
	s.publish(Event{Type: EventNotification, Namespace: ns})
}
