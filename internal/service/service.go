// Package service реализует бизнес-логику витрины SoccerGear.
//
// Всё состояние пользователя (корзина, избранное, уведомления, баллы, купоны)
// адресуется namespace: "user:{id}" для вошедшего пользователя и "guest" для
// гостя. Авторитетный источник профиля, заказов и баланса баллов — удалённый
// бэкенд магазина; витрина хранит зеркальные копии и собственные документы.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/RyanFidelis/soccergear-storefront/internal/backend"
	"github.com/RyanFidelis/soccergear-storefront/internal/cep"
	"github.com/RyanFidelis/soccergear-storefront/internal/model"
	"github.com/RyanFidelis/soccergear-storefront/internal/promo"
)

// GuestNamespace — namespace состояния неавторизованного посетителя.
const GuestNamespace = "guest"

// UserNamespace возвращает namespace состояния пользователя с указанным идентификатором.
func UserNamespace(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// ParseUserNamespace извлекает идентификатор пользователя из namespace.
// Для гостевого и некорректного namespace возвращает false.
func ParseUserNamespace(ns string) (int64, bool) {
	raw, ok := strings.CutPrefix(ns, "user:")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ValidationError описывает ошибку проверки входных данных. Сообщение
// предназначено для показа пользователю.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

// Ошибки проверки входных данных и состояния покупки.
var (
	ErrInvalidName        = validationError("informe nome e sobrenome")
	ErrInvalidEmail       = validationError("e-mail inválido")
	ErrInvalidPhone       = validationError("telefone inválido")
	ErrInvalidPassword    = validationError("a senha deve ter entre 6 e 20 caracteres")
	ErrInvalidCEP         = validationError("CEP inválido")
	ErrCEPNotFound        = validationError("CEP não encontrado")
	ErrEmptyCart          = validationError("o carrinho está vazio")
	ErrNoShippingQuote    = validationError("calcule o frete antes de finalizar a compra")
	ErrInvalidPayment     = validationError("método de pagamento inválido")
	ErrCardDetails        = validationError("preencha todos os dados do cartão")
	ErrCheckoutInProgress = validationError("já existe um pagamento em processamento")
	ErrInsufficientPoints = validationError("pontos insuficientes para este resgate")
	ErrRewardNotFound     = validationError("prêmio não encontrado")
	ErrInvalidOrderAction = validationError("ação inválida")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	Cart(ctx context.Context, ns string) ([]model.CartItem, error)
	SaveCart(ctx context.Context, ns string, items []model.CartItem) error
	DeleteCart(ctx context.Context, ns string) error
	Favorites(ctx context.Context, ns string) ([]model.Favorite, error)
	SaveFavorites(ctx context.Context, ns string, favs []model.Favorite) error
	Notifications(ctx context.Context, ns string) ([]model.Notification, error)
	SaveNotifications(ctx context.Context, ns string, list []model.Notification) error
	AppendNotification(ctx context.Context, ns string, n model.Notification) error
	AppendNotificationIfNew(ctx context.Context, ns, key string, n model.Notification) (bool, error)
	Checkout(ctx context.Context, ns string) (*model.Checkout, bool, error)
	SaveCheckout(ctx context.Context, ns string, co *model.Checkout) error
	DeleteCheckout(ctx context.Context, ns string) error
	Points(ctx context.Context, ns string) (model.PointsAccount, error)
	SavePoints(ctx context.Context, ns string, acc model.PointsAccount) error
	Coupons(ctx context.Context, ns string) ([]model.Coupon, error)
	SaveCoupons(ctx context.Context, ns string, coupons []model.Coupon) error
	Profile(ctx context.Context, ns string) (*model.User, bool, error)
	SaveProfile(ctx context.Context, ns string, u *model.User) error
	UserNamespaces(ctx context.Context) ([]string, error)
	PromoSentAt(ctx context.Context, ns string) (time.Time, bool, error)
	SetPromoSentAt(ctx context.Context, ns string, t time.Time) error
}

// Backend описывает контракт клиента удалённого бэкенда магазина.
type Backend interface {
	Register(ctx context.Context, req backend.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, update backend.UserUpdate) (*model.User, error)
	NewOrder(ctx context.Context, req backend.OrderRequest) (int64, error)
	MyOrders(ctx context.Context, userID int64) ([]model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	SetOrderStatus(ctx context.Context, orderID int64, acao string) error
	ListClients(ctx context.Context) ([]model.User, error)
	DashboardChart(ctx context.Context) (json.RawMessage, error)
}

// CEPLookup описывает контракт сервиса поиска адреса по CEP.
type CEPLookup interface {
	Lookup(ctx context.Context, cep string) (*cep.Address, error)
}

// Service содержит бизнес-логику витрины.
type Service struct {
	repo    Repository
	backend Backend
	cep     CEPLookup
	promo   *promo.Generator

	orderPollInterval time.Duration
	promoPollInterval time.Duration

	// submitMu защищает submitting: не более одного подтверждения
	// оплаты на namespace одновременно.
	submitMu   sync.Mutex
	submitting map[string]bool

	subMu       sync.Mutex
	subscribers map[chan Event]struct{}

	now func() time.Time
}

// NewService создаёт новый сервис витрины.
func NewService(repo Repository, be Backend, cepClient CEPLookup, gen *promo.Generator, orderPoll, promoPoll time.Duration) *Service {
	return &Service{
		repo:              repo,
		backend:           be,
		cep:               cepClient,
		promo:             gen,
		orderPollInterval: orderPoll,
		promoPollInterval: promoPoll,
		submitting:        make(map[string]bool),
		subscribers:       make(map[chan Event]struct{}),
		now:               time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}
