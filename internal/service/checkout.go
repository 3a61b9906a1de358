package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/RyanFidelis/soccergear-storefront/internal/backend"
	"github.com/RyanFidelis/soccergear-storefront/internal/cep"
	"github.com/RyanFidelis/soccergear-storefront/internal/model"
	"github.com/RyanFidelis/soccergear-storefront/internal/validation"
)

// Методы оплаты, принимаемые при подтверждении покупки.
const (
	PaymentPix    = "pix"
	PaymentCartao = "cartao"
	PaymentBoleto = "boleto"
)

// Статические платёжные реквизиты магазина.
const (
	pixKey = "00020126360014BR.GOV.BCB.PIX0114+55119999999990214Pagamento Teste" +
		"52040000530398654041.005802BR5925SoccerGear Pagamento6014SAO PAULO BR62070503***6304ABCD"
	boletoLine        = "34191.79001 01043.510047 91020.150008 8 12340000025000"
	boletoLineDigits  = "34191790010104351004791020150008812340000025000"
	purchaseBonus     = 50
	qrCodeServiceURL  = "https://api.qrserver.com/v1/create-qr-code/?size=280x280&data="
	barcodeServiceURL = "https://bwipjs-api.metafloor.com/?bcid=code128&text="
)

// OrderConfirmation возвращается после успешного подтверждения покупки
// и содержит реквизиты для завершения оплаты выбранным методом.
type OrderConfirmation struct {
	OrderID        int64  `json:"pedidoId,omitempty"`
	Metodo         string `json:"metodo"`
	Total          int64  `json:"total"`
	ChavePix       string `json:"chavePix,omitempty"`
	QRCodeURL      string `json:"qrCodeUrl,omitempty"`
	LinhaDigitavel string `json:"linhaDigitavel,omitempty"`
	BarcodeURL     string `json:"codigoBarrasUrl,omitempty"`
	PontosGanhos   int64  `json:"pontosGanhos"`
}

// QuoteShipping рассчитывает доставку по CEP и фиксирует расчёт в
// подготовленной покупке namespace вместе со снимком корзины.
func (s *Service) QuoteShipping(ctx context.Context, ns, rawCEP string) (*model.ShippingQuote, error) {
	normalized, ok := validation.NormalizeCEP(rawCEP)
	if !ok {
		return nil, ErrInvalidCEP
	}

	items, err := s.repo.Cart(ctx, ns)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	addr, err := s.cep.Lookup(ctx, normalized)
	if err != nil {
		if errors.Is(err, cep.ErrNotFound) {
			return nil, ErrCEPNotFound
		}
		return nil, err
	}

	tier := cep.TierFor(addr)
	quote := &model.ShippingQuote{
		CEP:    normalized,
		Rua:    addr.Logradouro,
		Cidade: addr.Localidade,
		UF:     addr.UF,
		Prazo:  tier.Prazo,
		Valor:  tier.Valor,
	}

	co := &model.Checkout{
		Items:     items,
		Frete:     quote,
		CreatedAt: s.now(),
	}
	if err := s.repo.SaveCheckout(ctx, ns, co); err != nil {
		return nil, err
	}

	return quote, nil
}

// CurrentCheckout возвращает подготовленную покупку namespace, если она есть.
func (s *Service) CurrentCheckout(ctx context.Context, ns string) (*model.Checkout, bool, error) {
	return s.repo.Checkout(ctx, ns)
}

// ConfirmOrder подтверждает оплату: проверяет корзину, расчёт доставки и
// метод оплаты, создаёт заказ на бэкенде и лишь после его ответа очищает
// локальное состояние. Отказ бэкенда оставляет корзину нетронутой, чтобы
// пользователь мог повторить попытку. На namespace допускается не более
// одного подтверждения одновременно.
func (s *Service) ConfirmOrder(ctx context.Context, userID int64, metodo string, card *model.PaymentCard) (*OrderConfirmation, error) {
	ns := UserNamespace(userID)

	if !s.beginSubmit(ns) {
		return nil, ErrCheckoutInProgress
	}
	defer s.endSubmit(ns)

	items, err := s.repo.Cart(ctx, ns)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	co, found, err := s.repo.Checkout(ctx, ns)
	if err != nil {
		return nil, err
	}
	if !found || co.Frete == nil {
		return nil, ErrNoShippingQuote
	}

	switch metodo {
	case PaymentPix, PaymentBoleto:
	case PaymentCartao:
		if card == nil || card.Numero == "" || card.Nome == "" || card.Validade == "" || card.CVV == "" {
			return nil, ErrCardDetails
		}
	default:
		return nil, ErrInvalidPayment
	}

	cliente, found, err := s.repo.Profile(ctx, ns)
	if err != nil {
		return nil, err
	}
	if !found {
		cliente, err = s.backend.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	total := Subtotal(items) + co.Frete.Valor

	orderID, err := s.backend.NewOrder(ctx, backend.OrderRequest{
		Cliente:           cliente,
		Itens:             items,
		Metodo:            metodo,
		DetalhesPagamento: card,
		TotalCentavos:     total,
		Status:            model.OrderStatusAguardando,
	})
	if err != nil {
		return nil, err
	}

	// Заказ принят: дальше любые локальные сбои не отменяют покупку.
	_ = s.repo.DeleteCart(ctx, ns)
	_ = s.repo.DeleteCheckout(ctx, ns)
	s.publish(Event{Type: EventCartChanged, Namespace: ns})

	s.appendPendingNotification(ctx, ns, orderID)
	s.awardPoints(ctx, userID, purchaseBonus, "Compra realizada")

	conf := &OrderConfirmation{
		OrderID:      orderID,
		Metodo:       metodo,
		Total:        total,
		PontosGanhos: purchaseBonus,
	}
	switch metodo {
	case PaymentPix:
		conf.ChavePix = pixKey
		conf.QRCodeURL = qrCodeServiceURL + url.QueryEscape(pixKey)
	case PaymentBoleto:
		conf.LinhaDigitavel = boletoLine
		conf.BarcodeURL = barcodeServiceURL + url.QueryEscape(boletoLineDigits)
	}

	return conf, nil
}

func (s *Service) beginSubmit(ns string) bool {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	if s.submitting[ns] {
		return false
	}
	s.submitting[ns] = true
	return true
}

func (s *Service) endSubmit(ns string) {
	s.submitMu.Lock()
	delete(s.submitting, ns)
	s.submitMu.Unlock()
}

// appendPendingNotification добавляет уведомление о заказе в обработке.
// Когда бэкенд сообщил идентификатор заказа, уведомление проходит через ключ
// дедупликации, и фоновый опрос не продублирует его.
func (s *Service) appendPendingNotification(ctx context.Context, ns string, orderID int64) {
	n := model.Notification{
		ID:        uuid.NewString(),
		Categoria: model.NotificationPendente,
		Titulo:    "Pagamento em análise",
		Descricao: "Recebemos seu pedido e ele está aguardando a confirmação do pagamento.",
		Data:      s.now(),
	}

	if orderID > 0 {
		n.ExternalID = orderEventKey(orderID, model.OrderStatusAguardando)
		if added, err := s.repo.AppendNotificationIfNew(ctx, ns, n.ExternalID, n); err == nil && added {
			s.publish(Event{Type: EventNotification, Namespace: ns})
		}
		return
	}

	if err := s.repo.AppendNotification(ctx, ns, n); err == nil {
		s.publish(Event{Type: EventNotification, Namespace: ns})
	}
}

func orderEventKey(orderID int64, status model.OrderStatus) string {
	return fmt.Sprintf("pedido-%d-%s", orderID, status)
}
