package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/RyanFidelis/soccergear-storefront/internal/middleware"
	"github.com/RyanFidelis/soccergear-storefront/internal/model"
	"github.com/RyanFidelis/soccergear-storefront/internal/service"
)

type shippingRequest struct {
	CEP string `json:"cep"`
}

type shippingResponse struct {
	CEP    string  `json:"cep"`
	Rua    string  `json:"rua,omitempty"`
	Cidade string  `json:"cidade"`
	UF     string  `json:"uf"`
	Prazo  string  `json:"prazo"`
	Valor  float64 `json:"valor"`
}

// QuoteShipping рассчитывает доставку по CEP для текущего namespace.
func (h *Handler) QuoteShipping(w http.ResponseWriter, r *http.Request) {
	var req shippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	quote, err := h.service.QuoteShipping(r.Context(), namespaceFromRequest(r), req.CEP)
	if err != nil {
		h.respondError(w, err, "quote shipping")
		return
	}

	h.writeJSON(w, http.StatusOK, shippingResponse{
		CEP:    quote.CEP,
		Rua:    quote.Rua,
		Cidade: quote.Cidade,
		UF:     quote.UF,
		Prazo:  quote.Prazo,
		Valor:  reais(quote.Valor),
	})
}

type checkoutResponse struct {
	Items    []cartItemJSON    `json:"items"`
	Frete    *shippingResponse `json:"frete,omitempty"`
	Subtotal float64           `json:"subtotal"`
	Total    float64           `json:"total"`
}

// GetCheckout возвращает подготовленную покупку текущего namespace.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	co, found, err := h.service.CurrentCheckout(r.Context(), namespaceFromRequest(r))
	if err != nil {
		h.respondError(w, err, "get checkout")
		return
	}
	if !found {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	resp := checkoutResponse{
		Items:    cartToJSON(co.Items),
		Subtotal: reais(service.Subtotal(co.Items)),
	}
	total := service.Subtotal(co.Items)
	if co.Frete != nil {
		resp.Frete = &shippingResponse{
			CEP:    co.Frete.CEP,
			Rua:    co.Frete.Rua,
			Cidade: co.Frete.Cidade,
			UF:     co.Frete.UF,
			Prazo:  co.Frete.Prazo,
			Valor:  reais(co.Frete.Valor),
		}
		total += co.Frete.Valor
	}
	resp.Total = reais(total)

	h.writeJSON(w, http.StatusOK, resp)
}

type confirmRequest struct {
	Metodo            string             `json:"metodo"`
	DetalhesPagamento *model.PaymentCard `json:"detalhesPagamento,omitempty"`
}

type confirmResponse struct {
	PedidoID       int64   `json:"pedidoId,omitempty"`
	Metodo         string  `json:"metodo"`
	Total          float64 `json:"total"`
	ChavePix       string  `json:"chavePix,omitempty"`
	QRCodeURL      string  `json:"qrCodeUrl,omitempty"`
	LinhaDigitavel string  `json:"linhaDigitavel,omitempty"`
	CodigoBarras   string  `json:"codigoBarrasUrl,omitempty"`
	PontosGanhos   int64   `json:"pontosGanhos"`
}

// ConfirmOrder подтверждает оплату подготовленной покупки.
func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	conf, err := h.service.ConfirmOrder(r.Context(), userID, req.Metodo, req.DetalhesPagamento)
	if err != nil {
		h.respondError(w, err, "confirm order")
		return
	}

	h.writeJSON(w, http.StatusOK, confirmResponse{
		PedidoID:       conf.OrderID,
		Metodo:         conf.Metodo,
		Total:          reais(conf.Total),
		ChavePix:       conf.ChavePix,
		QRCodeURL:      conf.QRCodeURL,
		LinhaDigitavel: conf.LinhaDigitavel,
		CodigoBarras:   conf.BarcodeURL,
		PontosGanhos:   conf.PontosGanhos,
	})
}

type orderJSON struct {
	ID     int64          `json:"id"`
	Itens  []cartItemJSON `json:"itens,omitempty"`
	Metodo string         `json:"metodo,omitempty"`
	Total  float64        `json:"total"`
	Status string         `json:"status"`
	Data   string         `json:"data,omitempty"`
}

func ordersToJSON(orders []model.Order) []orderJSON {
	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderJSON{
			ID:     o.ID,
			Itens:  cartToJSON(o.Itens),
			Metodo: o.Metodo,
			Total:  reais(o.Total),
			Status: string(o.Status),
			Data:   o.Data,
		})
	}
	return out
}

// GetMyOrders возвращает заказы текущего пользователя. Отклонённые заказы
// включаются только при ?todos=1.
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	includeRejected := r.URL.Query().Get("todos") == "1"

	orders, err := h.service.MyOrders(r.Context(), userID, includeRejected)
	if err != nil {
		h.respondError(w, err, "get my orders")
		return
	}

	h.writeJSON(w, http.StatusOK, ordersToJSON(orders))
}

type pointsResponse struct {
	Saldo     int64               `json:"saldo"`
	Historico []model.PointsEntry `json:"historico"`
}

// GetPoints возвращает счёт бонусных баллов текущего пользователя.
func (h *Handler) GetPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	acc, err := h.service.Points(r.Context(), userID)
	if err != nil {
		h.respondError(w, err, "get points")
		return
	}

	h.writeJSON(w, http.StatusOK, pointsResponse{Saldo: acc.Saldo, Historico: acc.Historico})
}

// GetRewards возвращает каталог призов программы лояльности.
func (h *Handler) GetRewards(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Rewards())
}

// Redeem списывает баллы текущего пользователя за приз.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var raw struct {
		PremioID json.Number `json:"premioId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	rewardID, err := strconv.ParseInt(raw.PremioID.String(), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	acc, err := h.service.Redeem(r.Context(), userID, rewardID)
	if err != nil {
		h.respondError(w, err, "redeem reward")
		return
	}

	h.writeJSON(w, http.StatusOK, pointsResponse{Saldo: acc.Saldo, Historico: acc.Historico})
}
