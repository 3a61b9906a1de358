// Package handler содержит HTTP-обработчики API витрины SoccerGear.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/RyanFidelis/soccergear-storefront/internal/backend"
	"github.com/RyanFidelis/soccergear-storefront/internal/middleware"
	"github.com/RyanFidelis/soccergear-storefront/internal/model"
	"github.com/RyanFidelis/soccergear-storefront/internal/service"
)

// errBackendDown показывается пользователю при любой сетевой ошибке
// на пути к бэкенду или сервису CEP.
const errBackendDown = "não foi possível conectar ao servidor"

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, req backend.RegisterRequest) (*model.User, error)
	LoginUser(ctx context.Context, email, password string) (*model.User, error)
	Profile(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, update backend.UserUpdate) (*model.User, error)

	Cart(ctx context.Context, ns string) ([]model.CartItem, error)
	AddToCart(ctx context.Context, ns string, item model.CartItem) ([]model.CartItem, error)
	UpdateQuantity(ctx context.Context, ns, uid string, delta int) ([]model.CartItem, error)
	RemoveFromCart(ctx context.Context, ns, uid string) ([]model.CartItem, error)

	Favorites(ctx context.Context, ns string) ([]model.Favorite, error)
	ToggleFavorite(ctx context.Context, ns string, fav model.Favorite) ([]model.Favorite, bool, error)

	QuoteShipping(ctx context.Context, ns, cep string) (*model.ShippingQuote, error)
	CurrentCheckout(ctx context.Context, ns string) (*model.Checkout, bool, error)
	ConfirmOrder(ctx context.Context, userID int64, metodo string, card *model.PaymentCard) (*service.OrderConfirmation, error)

	Notifications(ctx context.Context, ns, filter string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, ns, id string) error
	MarkAllNotificationsRead(ctx context.Context, ns string) error
	DeleteNotification(ctx context.Context, ns, id string) error
	ClearNotifications(ctx context.Context, ns string) error

	Points(ctx context.Context, userID int64) (model.PointsAccount, error)
	Redeem(ctx context.Context, userID, rewardID int64) (model.PointsAccount, error)
	Rewards() []model.Reward

	Coupons(ctx context.Context, ns string) ([]model.Coupon, error)
	GenerateCoupon(ctx context.Context, ns string) (model.Coupon, error)

	MyOrders(ctx context.Context, userID int64, includeRejected bool) ([]model.Order, error)

	AllOrders(ctx context.Context) ([]model.Order, error)
	Clients(ctx context.Context) ([]model.User, error)
	DashboardChart(ctx context.Context) (json.RawMessage, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, acao string) error

	Subscribe() (<-chan service.Event, func())
}

// Handler реализует HTTP-обработчики API витрины.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

// namespaceFromRequest возвращает namespace состояния для запроса:
// вошедший пользователь получает собственный, остальные — гостевой.
func namespaceFromRequest(r *http.Request) string {
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return service.UserNamespace(userID)
	}
	return service.GuestNamespace
}

// respondError переводит ошибку сервиса в HTTP-ответ: ошибки проверки входных
// данных — 400 с сообщением, отказы бэкенда — его статус и дословное
// сообщение, сетевые сбои — 502, остальное — 500.
func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		http.Error(w, ve.Error(), http.StatusBadRequest)
		return
	}

	var beErr *backend.Error
	if errors.As(err, &beErr) {
		msg := beErr.Message
		if msg == "" {
			msg = http.StatusText(beErr.StatusCode)
		}
		http.Error(w, msg, beErr.StatusCode)
		return
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		http.Error(w, errBackendDown, http.StatusBadGateway)
		return
	}

	h.logger.Error(op, zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

// reais переводит сентаво в реалы для ответов API.
func reais(centavos int64) float64 {
	return float64(centavos) / 100
}

// centavos переводит реалы из тела запроса во внутреннее представление.
func centavos(v float64) int64 {
	return int64(math.Round(v * 100))
}

type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Telefone       string `json:"telefone"`
	DataNascimento string `json:"dataNascimento"`
	Password       string `json:"password"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	u, err := h.service.RegisterUser(r.Context(), backend.RegisterRequest{
		Name:           req.Name,
		Email:          req.Email,
		Telefone:       req.Telefone,
		DataNascimento: req.DataNascimento,
		Password:       req.Password,
	})
	if err != nil {
		h.respondError(w, err, "register user")
		return
	}

	h.authMiddleware.SetAuthCookie(w, u.ID)
	h.writeJSON(w, http.StatusOK, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет аутентификацию пользователя и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	u, err := h.service.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err, "login user")
		return
	}

	h.authMiddleware.SetAuthCookie(w, u.ID)
	h.writeJSON(w, http.StatusOK, u)
}

// Logout завершает сессию пользователя.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusOK)
}

// GetProfile возвращает профиль текущего пользователя.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	u, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		h.respondError(w, err, "get profile")
		return
	}

	h.writeJSON(w, http.StatusOK, u)
}

// UpdateProfile обрабатывает частичное обновление профиля текущего пользователя.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var update backend.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		h.respondError(w, err, "update profile")
		return
	}

	h.writeJSON(w, http.StatusOK, u)
}
