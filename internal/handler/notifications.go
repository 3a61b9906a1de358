package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetNotifications возвращает уведомления текущего namespace. Фильтр задаётся
// параметром ?filtro=: todas, nao-lidas либо категория.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Notifications(r.Context(), namespaceFromRequest(r), r.URL.Query().Get("filtro"))
	if err != nil {
		h.respondError(w, err, "get notifications")
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// MarkNotificationRead помечает уведомление прочитанным.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkNotificationRead(r.Context(), namespaceFromRequest(r), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err, "mark notification read")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// MarkAllNotificationsRead помечает все уведомления прочитанными.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllNotificationsRead(r.Context(), namespaceFromRequest(r)); err != nil {
		h.respondError(w, err, "mark all notifications read")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteNotification удаляет уведомление.
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteNotification(r.Context(), namespaceFromRequest(r), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err, "delete notification")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ClearNotifications удаляет все уведомления текущего namespace.
func (h *Handler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearNotifications(r.Context(), namespaceFromRequest(r)); err != nil {
		h.respondError(w, err, "clear notifications")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Events отдаёт поток событий текущего namespace через server-sent events.
// Клиент перечитывает состояние, получив событие нужного типа.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ns := namespaceFromRequest(r)

	events, cancel := h.service.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Namespace != ns {
				continue
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
