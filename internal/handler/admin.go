package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// GetAllOrders возвращает все заказы магазина.
func (h *Handler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.AllOrders(r.Context())
	if err != nil {
		h.respondError(w, err, "get all orders")
		return
	}
	h.writeJSON(w, http.StatusOK, ordersToJSON(orders))
}

// GetClients возвращает список клиентов магазина.
func (h *Handler) GetClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.Clients(r.Context())
	if err != nil {
		h.respondError(w, err, "get clients")
		return
	}
	h.writeJSON(w, http.StatusOK, clients)
}

// GetDashboardChart возвращает данные графика продаж.
func (h *Handler) GetDashboardChart(w http.ResponseWriter, r *http.Request) {
	chart, err := h.service.DashboardChart(r.Context())
	if err != nil {
		h.respondError(w, err, "get dashboard chart")
		return
	}
	h.writeJSON(w, http.StatusOK, chart)
}

// UpdateOrderStatus применяет административное действие к заказу:
// PUT /api/admin/pedido/{acao}/{id}, где acao — aprovar либо rejeitar.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateOrderStatus(r.Context(), orderID, chi.URLParam(r, "acao")); err != nil {
		h.respondError(w, err, "update order status")
		return
	}

	w.WriteHeader(http.StatusOK)
}
