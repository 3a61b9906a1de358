package service

import (
	"context"
	"testing"
	"time"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

func TestPollOrders_SingleTransitionYieldsOneNotification(t *testing.T) {
	repo := newFakeRepo()
	be := &stubBackend{orders: []model.Order{{ID: 7, Status: model.OrderStatusAprovado}}}
	svc := newTestService(repo, be, &stubCEP{})
	ctx := context.Background()

	ns := UserNamespace(1)
	if err := repo.SaveProfile(ctx, ns, &model.User{ID: 1, Name: "Ryan Fidelis"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	svc.pollOrders(ctx)
	svc.pollOrders(ctx)
	svc.pollOrders(ctx)

	notifs, _ := repo.Notifications(ctx, ns)
	if len(notifs) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifs))
	}
	if notifs[0].Categoria != model.NotificationAprovado {
		t.Fatalf("categoria = %q, want aprovado", notifs[0].Categoria)
	}
	if notifs[0].Titulo != "Pagamento Aprovado" {
		t.Fatalf("titulo = %q", notifs[0].Titulo)
	}
}

func TestPollOrders_EachStatusTransitionNotifiesOnce(t *testing.T) {
	repo := newFakeRepo()
	be := &stubBackend{orders: []model.Order{{ID: 7, Status: model.OrderStatusAguardando}}}
	svc := newTestService(repo, be, &stubCEP{})
	ctx := context.Background()

	ns := UserNamespace(1)
	if err := repo.SaveProfile(ctx, ns, &model.User{ID: 1, Name: "Ryan Fidelis"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	svc.pollOrders(ctx)

	// Заказ одобрен между опросами.
	be.orders = []model.Order{{ID: 7, Status: model.OrderStatusAprovado}}
	svc.pollOrders(ctx)
	svc.pollOrders(ctx)

	notifs, _ := repo.Notifications(ctx, ns)
	if len(notifs) != 2 {
		t.Fatalf("got %d notifications, want 2", len(notifs))
	}
	// Новые уведомления добавляются в начало списка.
	if notifs[0].Categoria != model.NotificationAprovado || notifs[1].Categoria != model.NotificationPendente {
		t.Fatalf("unexpected order: %q, %q", notifs[0].Categoria, notifs[1].Categoria)
	}
}

func TestPollOrders_BackendErrorSkipsUser(t *testing.T) {
	repo := newFakeRepo()
	be := &stubBackend{ordersErr: errConnRefused}
	svc := newTestService(repo, be, &stubCEP{})
	ctx := context.Background()

	ns := UserNamespace(1)
	if err := repo.SaveProfile(ctx, ns, &model.User{ID: 1, Name: "Ryan Fidelis"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	svc.pollOrders(ctx)

	notifs, _ := repo.Notifications(ctx, ns)
	if len(notifs) != 0 {
		t.Fatalf("got %d notifications, want 0", len(notifs))
	}
}

func TestNotificationsFilter(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &stubBackend{}, &stubCEP{})
	ctx := context.Background()

	ns := GuestNamespace
	seed := []model.Notification{
		{ID: "a", Categoria: model.NotificationAprovado, Lida: true},
		{ID: "b", Categoria: model.NotificationRejeitado},
		{ID: "c", Categoria: model.NotificationPromocional},
	}
	if err := repo.SaveNotifications(ctx, ns, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		filter string
		want   int
	}{
		{filter: "", want: 3},
		{filter: FilterAll, want: 3},
		{filter: FilterUnread, want: 2},
		{filter: "aprovado", want: 1},
		{filter: "rejeitado", want: 1},
		{filter: "promocional", want: 1},
		{filter: "pendente", want: 0},
	}

	for _, tt := range tests {
		got, err := svc.Notifications(ctx, ns, tt.filter)
		if err != nil {
			t.Fatalf("filter %q: %v", tt.filter, err)
		}
		if len(got) != tt.want {
			t.Fatalf("filter %q: got %d, want %d", tt.filter, len(got), tt.want)
		}
	}
}

func TestMarkNotificationRead(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &stubBackend{}, &stubCEP{})
	ctx := context.Background()

	seed := []model.Notification{{ID: "a"}, {ID: "b"}}
	if err := repo.SaveNotifications(ctx, GuestNamespace, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.MarkNotificationRead(ctx, GuestNamespace, "a"); err != nil {
		t.Fatalf("mark: %v", err)
	}

	notifs, _ := repo.Notifications(ctx, GuestNamespace)
	if !notifs[0].Lida || notifs[1].Lida {
		t.Fatalf("unexpected read flags: %+v", notifs)
	}
}

func TestClearNotifications_KeepsDedupKeys(t *testing.T) {
	repo := newFakeRepo()
	be := &stubBackend{orders: []model.Order{{ID: 7, Status: model.OrderStatusAprovado}}}
	svc := newTestService(repo, be, &stubCEP{})
	ctx := context.Background()

	ns := UserNamespace(1)
	if err := repo.SaveProfile(ctx, ns, &model.User{ID: 1, Name: "Ryan Fidelis"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	svc.pollOrders(ctx)
	if err := svc.ClearNotifications(ctx, ns); err != nil {
		t.Fatalf("clear: %v", err)
	}
	svc.pollOrders(ctx)

	notifs, _ := repo.Notifications(ctx, ns)
	if len(notifs) != 0 {
		t.Fatalf("cleared transition came back: %d notifications", len(notifs))
	}
}

func TestSendPromo_RateLimited(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &stubBackend{}, &stubCEP{})
	ctx := context.Background()

	ns := UserNamespace(1)
	if err := repo.SaveProfile(ctx, ns, &model.User{ID: 1, Name: "Ryan Fidelis"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	svc.sendPromo(ctx, ns)
	svc.sendPromo(ctx, ns)

	notifs, _ := repo.Notifications(ctx, ns)
	if len(notifs) != 1 {
		t.Fatalf("got %d promo notifications, want 1", len(notifs))
	}

	// Интервал прошёл: следующая рассылка разрешена.
	repo.promoSent[ns] = time.Now().Add(-2 * time.Hour)
	svc.sendPromo(ctx, ns)

	notifs, _ = repo.Notifications(ctx, ns)
	if len(notifs) != 2 {
		t.Fatalf("got %d promo notifications, want 2", len(notifs))
	}
}

func TestSendPromo_FullWalletStillReceivesCoupon(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &stubBackend{}, &stubCEP{})
	ctx := context.Background()

	ns := UserNamespace(1)
	coupons := make([]model.Coupon, maxCoupons)
	for i := range coupons {
		coupons[i] = model.Coupon{ID: string(rune('a' + i))}
	}
	if err := repo.SaveCoupons(ctx, ns, coupons); err != nil {
		t.Fatalf("seed coupons: %v", err)
	}

	svc.sendPromo(ctx, ns)

	got, _ := repo.Coupons(ctx, ns)
	if len(got) != maxCoupons {
		t.Fatalf("got %d coupons, want %d", len(got), maxCoupons)
	}
	if got[0].ID == coupons[0].ID {
		t.Fatalf("new coupon not issued into full wallet")
	}
	notifs, _ := repo.Notifications(ctx, ns)
	if len(notifs) != 1 {
		t.Fatalf("got %d promo notifications, want 1", len(notifs))
	}
}

func TestSendPromo_CouponFailureDoesNotSetMark(t *testing.T) {
	repo := newFakeRepo()
	repo.saveCouponsErr = errConnRefused
	svc := newTestService(repo, &stubBackend{}, &stubCEP{})
	ctx := context.Background()

	ns := UserNamespace(1)
	svc.sendPromo(ctx, ns)

	if _, found := repo.promoSent[ns]; found {
		t.Fatalf("failed promo must not set the sent mark")
	}

	// Хранилище ожило: следующий тик доставляет купон без ожидания интервала.
	repo.saveCouponsErr = nil
	svc.sendPromo(ctx, ns)

	notifs, _ := repo.Notifications(ctx, ns)
	if len(notifs) != 1 {
		t.Fatalf("got %d promo notifications, want 1", len(notifs))
	}
	if _, found := repo.promoSent[ns]; !found {
		t.Fatalf("successful promo must set the sent mark")
	}
}
