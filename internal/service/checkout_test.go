package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RyanFidelis/soccergear-storefront/internal/cep"
	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

func testCEP() *stubCEP {
	return &stubCEP{addrs: map[string]*cep.Address{
		"06501000": {CEP: "06501-000", Localidade: "Santana de Parnaíba", UF: "SP"},
		"01310100": {CEP: "01310-100", Logradouro: "Avenida Paulista", Localidade: "São Paulo", UF: "SP"},
		"20040002": {CEP: "20040-002", Localidade: "Rio de Janeiro", UF: "RJ"},
	}}
}

func TestQuoteShipping_Tiers(t *testing.T) {
	tests := []struct {
		name      string
		cep       string
		wantValor int64
		wantPrazo string
	}{
		{name: "local city", cep: "06501-000", wantValor: 500, wantPrazo: "1 dia útil (Local)"},
		{name: "same state", cep: "01310-100", wantValor: 1000, wantPrazo: "2 a 4 dias úteis"},
		{name: "other state", cep: "20040-002", wantValor: 2000, wantPrazo: "5 a 10 dias úteis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := newTestService(repo, &stubBackend{}, testCEP())
			ctx := context.Background()

			if _, err := svc.AddToCart(ctx, GuestNamespace, chuteira(1)); err != nil {
				t.Fatalf("add: %v", err)
			}

			quote, err := svc.QuoteShipping(ctx, GuestNamespace, tt.cep)
			if err != nil {
				t.Fatalf("quote: %v", err)
			}

			if quote.Valor != tt.wantValor {
				t.Fatalf("valor = %d, want %d", quote.Valor, tt.wantValor)
			}
			if quote.Prazo != tt.wantPrazo {
				t.Fatalf("prazo = %q, want %q", quote.Prazo, tt.wantPrazo)
			}

			co, found, err := svc.CurrentCheckout(ctx, GuestNamespace)
			if err != nil || !found {
				t.Fatalf("checkout not saved: found=%v err=%v", found, err)
			}
			if co.Frete == nil || co.Frete.Valor != tt.wantValor {
				t.Fatalf("saved frete = %+v, want valor %d", co.Frete, tt.wantValor)
			}
		})
	}
}

func TestQuoteShipping_InvalidCEP(t *testing.T) {
	svc := newTestService(newFakeRepo(), &stubBackend{}, testCEP())
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, GuestNamespace, chuteira(1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := svc.QuoteShipping(ctx, GuestNamespace, "123"); !errors.Is(err, ErrInvalidCEP) {
		t.Fatalf("err = %v, want ErrInvalidCEP", err)
	}
}

func TestQuoteShipping_UnknownCEP(t *testing.T) {
	svc := newTestService(newFakeRepo(), &stubBackend{}, testCEP())
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, GuestNamespace, chuteira(1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := svc.QuoteShipping(ctx, GuestNamespace, "99999-999"); !errors.Is(err, ErrCEPNotFound) {
		t.Fatalf("err = %v, want ErrCEPNotFound", err)
	}
}

func confirmFixture(t *testing.T, be *stubBackend) (*Service, *fakeRepo, context.Context) {
	t.Helper()

	repo := newFakeRepo()
	svc := newTestService(repo, be, testCEP())
	ctx := context.Background()

	ns := UserNamespace(1)
	if err := repo.SaveProfile(ctx, ns, &model.User{ID: 1, Name: "Ryan Fidelis", Email: "ryan@example.com"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	return svc, repo, ctx
}

func TestConfirmOrder_EmptyCartMakesNoBackendCall(t *testing.T) {
	be := &stubBackend{}
	svc, _, ctx := confirmFixture(t, be)

	_, err := svc.ConfirmOrder(ctx, 1, PaymentPix, nil)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	if be.calls != 0 {
		t.Fatalf("backend called %d times, want 0", be.calls)
	}
}

func TestConfirmOrder_RequiresShippingQuote(t *testing.T) {
	be := &stubBackend{}
	svc, _, ctx := confirmFixture(t, be)

	ns := UserNamespace(1)
	if _, err := svc.AddToCart(ctx, ns, chuteira(1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err := svc.ConfirmOrder(ctx, 1, PaymentPix, nil)
	if !errors.Is(err, ErrNoShippingQuote) {
		t.Fatalf("err = %v, want ErrNoShippingQuote", err)
	}
	if be.newOrderCalls != 0 {
		t.Fatalf("NewOrder called %d times, want 0", be.newOrderCalls)
	}
}

func TestConfirmOrder_BackendFailureKeepsCart(t *testing.T) {
	be := &stubBackend{newOrderErr: errConnRefused}
	svc, _, ctx := confirmFixture(t, be)

	ns := UserNamespace(1)
	if _, err := svc.AddToCart(ctx, ns, chuteira(1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.QuoteShipping(ctx, ns, "20040-002"); err != nil {
		t.Fatalf("quote: %v", err)
	}

	_, err := svc.ConfirmOrder(ctx, 1, PaymentPix, nil)
	if err == nil {
		t.Fatalf("expected error from backend")
	}

	items, err := svc.Cart(ctx, ns)
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("cart has %d lines after failed checkout, want 1", len(items))
	}
}

func TestConfirmOrder_Success(t *testing.T) {
	be := &stubBackend{user: &model.User{ID: 1, Name: "Ryan Fidelis", Pontos: 0}, newOrderID: 33}
	svc, repo, ctx := confirmFixture(t, be)

	ns := UserNamespace(1)
	if _, err := svc.AddToCart(ctx, ns, chuteira(1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.QuoteShipping(ctx, ns, "20040-002"); err != nil {
		t.Fatalf("quote: %v", err)
	}

	conf, err := svc.ConfirmOrder(ctx, 1, PaymentPix, nil)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// 100,00 товара + 20,00 фрахта.
	if conf.Total != 12000 {
		t.Fatalf("total = %d, want 12000", conf.Total)
	}
	if be.lastOrder.TotalCentavos != 12000 {
		t.Fatalf("backend total = %d, want 12000", be.lastOrder.TotalCentavos)
	}
	if be.lastOrder.Status != model.OrderStatusAguardando {
		t.Fatalf("order status = %q, want aguardando", be.lastOrder.Status)
	}

	if conf.ChavePix == "" || !strings.Contains(conf.QRCodeURL, "api.qrserver.com") {
		t.Fatalf("missing pix artifacts: %+v", conf)
	}

	items, _ := svc.Cart(ctx, ns)
	if len(items) != 0 {
		t.Fatalf("cart has %d lines after checkout, want 0", len(items))
	}
	if _, found, _ := svc.CurrentCheckout(ctx, ns); found {
		t.Fatalf("checkout document must be cleared")
	}

	notifs, _ := repo.Notifications(ctx, ns)
	if len(notifs) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifs))
	}
	if notifs[0].Categoria != model.NotificationPendente {
		t.Fatalf("categoria = %q, want pendente", notifs[0].Categoria)
	}
	if notifs[0].ExternalID != "pedido-33-aguardando" {
		t.Fatalf("dedup key = %q, want pedido-33-aguardando", notifs[0].ExternalID)
	}

	if be.updateCalls != 1 || be.lastUpdate.Pontos == nil || *be.lastUpdate.Pontos != 50 {
		t.Fatalf("points award not sent to backend: calls=%d update=%+v", be.updateCalls, be.lastUpdate)
	}
}

func TestConfirmOrder_PendingNotDuplicatedByPoller(t *testing.T) {
	be := &stubBackend{user: &model.User{ID: 1, Name: "Ryan Fidelis"}, newOrderID: 33}
	svc, repo, ctx := confirmFixture(t, be)

	ns := UserNamespace(1)
	if _, err := svc.AddToCart(ctx, ns, chuteira(1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.QuoteShipping(ctx, ns, "20040-002"); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if _, err := svc.ConfirmOrder(ctx, 1, PaymentPix, nil); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	be.orders = []model.Order{{ID: 33, Status: model.OrderStatusAguardando}}
	svc.pollOrders(ctx)
	svc.pollOrders(ctx)

	notifs, _ := repo.Notifications(ctx, ns)
	if len(notifs) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifs))
	}
}

func TestConfirmOrder_CardRequiresDetails(t *testing.T) {
	be := &stubBackend{}
	svc, _, ctx := confirmFixture(t, be)

	ns := UserNamespace(1)
	if _, err := svc.AddToCart(ctx, ns, chuteira(1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.QuoteShipping(ctx, ns, "20040-002"); err != nil {
		t.Fatalf("quote: %v", err)
	}

	_, err := svc.ConfirmOrder(ctx, 1, PaymentCartao, &model.PaymentCard{Numero: "4111111111111111"})
	if !errors.Is(err, ErrCardDetails) {
		t.Fatalf("err = %v, want ErrCardDetails", err)
	}
}

func TestConfirmOrder_InvalidMethod(t *testing.T) {
	be := &stubBackend{}
	svc, _, ctx := confirmFixture(t, be)

	ns := UserNamespace(1)
	if _, err := svc.AddToCart(ctx, ns, chuteira(1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.QuoteShipping(ctx, ns, "20040-002"); err != nil {
		t.Fatalf("quote: %v", err)
	}

	_, err := svc.ConfirmOrder(ctx, 1, "cheque", nil)
	if !errors.Is(err, ErrInvalidPayment) {
		t.Fatalf("err = %v, want ErrInvalidPayment", err)
	}
}

func TestConfirmOrder_BoletoArtifacts(t *testing.T) {
	be := &stubBackend{user: &model.User{ID: 1, Name: "Ryan Fidelis"}, newOrderID: 5}
	svc, _, ctx := confirmFixture(t, be)

	ns := UserNamespace(1)
	if _, err := svc.AddToCart(ctx, ns, chuteira(1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.QuoteShipping(ctx, ns, "20040-002"); err != nil {
		t.Fatalf("quote: %v", err)
	}

	conf, err := svc.ConfirmOrder(ctx, 1, PaymentBoleto, nil)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if conf.LinhaDigitavel == "" || !strings.Contains(conf.BarcodeURL, "bwipjs-api.metafloor.com") {
		t.Fatalf("missing boleto artifacts: %+v", conf)
	}
	if conf.ChavePix != "" {
		t.Fatalf("boleto confirmation must not carry pix key")
	}
}

func TestBeginSubmit_Exclusive(t *testing.T) {
	svc := newTestService(newFakeRepo(), &stubBackend{}, &stubCEP{})
	ns := UserNamespace(1)

	if !svc.beginSubmit(ns) {
		t.Fatalf("first beginSubmit must succeed")
	}
	if svc.beginSubmit(ns) {
		t.Fatalf("second beginSubmit must fail while first holds the lock")
	}
	if !svc.beginSubmit(UserNamespace(2)) {
		t.Fatalf("other namespace must not be blocked")
	}

	svc.endSubmit(ns)
	if !svc.beginSubmit(ns) {
		t.Fatalf("beginSubmit must succeed after endSubmit")
	}
}
