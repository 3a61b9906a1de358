package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/RyanFidelis/soccergear-storefront/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware витрины.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware.Middleware)
				r.Get("/me", h.GetProfile)
				r.Put("/update", h.UpdateProfile)
			})
		})

		// Корзина, избранное и купоны доступны и гостю: его состояние
		// живёт в отдельном namespace.
		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Optional)

			r.Get("/carrinho", h.GetCart)
			r.Post("/carrinho", h.AddToCart)
			r.Put("/carrinho/{uid}", h.UpdateCartItem)
			r.Delete("/carrinho/{uid}", h.RemoveCartItem)

			r.Get("/favoritos", h.GetFavorites)
			r.Post("/favoritos", h.ToggleFavorite)

			r.Get("/cupons", h.GetCoupons)
			r.Post("/cupons/gerar", h.GenerateCoupon)

			r.Get("/notificacoes", h.GetNotifications)
			r.Put("/notificacoes/lidas", h.MarkAllNotificationsRead)
			r.Put("/notificacoes/{id}/lida", h.MarkNotificationRead)
			r.Delete("/notificacoes/{id}", h.DeleteNotification)
			r.Delete("/notificacoes", h.ClearNotifications)

			r.Post("/frete", h.QuoteShipping)
			r.Get("/checkout", h.GetCheckout)

			r.Get("/events", h.Events)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Post("/checkout/confirmar", h.ConfirmOrder)
			r.Get("/pedido/meus-pedidos", h.GetMyOrders)

			r.Get("/pontos", h.GetPoints)
			r.Get("/pontos/premios", h.GetRewards)
			r.Post("/pontos/resgatar", h.Redeem)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/pedidos", h.GetAllOrders)
				r.Get("/clientes", h.GetClients)
				r.Get("/dashboard", h.GetDashboardChart)
				r.Put("/pedido/{acao}/{id}", h.UpdateOrderStatus)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
