package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/RyanFidelis/soccergear-storefront/internal/backend"
	"github.com/RyanFidelis/soccergear-storefront/internal/cep"
	"github.com/RyanFidelis/soccergear-storefront/internal/model"
	"github.com/RyanFidelis/soccergear-storefront/internal/promo"
)

// fakeRepo хранит документы в памяти, повторяя семантику репозитория:
// каждая операция чтения возвращает копию, запись замещает документ целиком.
type fakeRepo struct {
	carts     map[string][]model.CartItem
	favorites map[string][]model.Favorite
	notifs    map[string][]model.Notification
	notified  map[string]bool
	checkouts map[string]*model.Checkout
	points    map[string]model.PointsAccount
	coupons   map[string][]model.Coupon
	profiles  map[string]*model.User
	promoSent map[string]time.Time

	saveCouponsErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		carts:     make(map[string][]model.CartItem),
		favorites: make(map[string][]model.Favorite),
		notifs:    make(map[string][]model.Notification),
		notified:  make(map[string]bool),
		checkouts: make(map[string]*model.Checkout),
		points:    make(map[string]model.PointsAccount),
		coupons:   make(map[string][]model.Coupon),
		profiles:  make(map[string]*model.User),
		promoSent: make(map[string]time.Time),
	}
}

func copyCart(items []model.CartItem) []model.CartItem {
	return append([]model.CartItem(nil), items...)
}

func (f *fakeRepo) Close() error { return nil }

func (f *fakeRepo) Cart(ctx context.Context, ns string) ([]model.CartItem, error) {
	return copyCart(f.carts[ns]), nil
}

func (f *fakeRepo) SaveCart(ctx context.Context, ns string, items []model.CartItem) error {
	f.carts[ns] = copyCart(items)
	return nil
}

func (f *fakeRepo) DeleteCart(ctx context.Context, ns string) error {
	delete(f.carts, ns)
	return nil
}

func (f *fakeRepo) Favorites(ctx context.Context, ns string) ([]model.Favorite, error) {
	return append([]model.Favorite(nil), f.favorites[ns]...), nil
}

func (f *fakeRepo) SaveFavorites(ctx context.Context, ns string, favs []model.Favorite) error {
	f.favorites[ns] = append([]model.Favorite(nil), favs...)
	return nil
}

func (f *fakeRepo) Notifications(ctx context.Context, ns string) ([]model.Notification, error) {
	return append([]model.Notification(nil), f.notifs[ns]...), nil
}

func (f *fakeRepo) SaveNotifications(ctx context.Context, ns string, list []model.Notification) error {
	f.notifs[ns] = append([]model.Notification(nil), list...)
	return nil
}

func (f *fakeRepo) AppendNotification(ctx context.Context, ns string, n model.Notification) error {
	f.notifs[ns] = append([]model.Notification{n}, f.notifs[ns]...)
	return nil
}

func (f *fakeRepo) AppendNotificationIfNew(ctx context.Context, ns, key string, n model.Notification) (bool, error) {
	k := ns + "|" + key
	if f.notified[k] {
		return false, nil
	}
	f.notified[k] = true
	f.notifs[ns] = append([]model.Notification{n}, f.notifs[ns]...)
	return true, nil
}

func (f *fakeRepo) Checkout(ctx context.Context, ns string) (*model.Checkout, bool, error) {
	co, ok := f.checkouts[ns]
	if !ok {
		return nil, false, nil
	}
	cp := *co
	return &cp, true, nil
}

func (f *fakeRepo) SaveCheckout(ctx context.Context, ns string, co *model.Checkout) error {
	cp := *co
	f.checkouts[ns] = &cp
	return nil
}

func (f *fakeRepo) DeleteCheckout(ctx context.Context, ns string) error {
	delete(f.checkouts, ns)
	return nil
}

func (f *fakeRepo) Points(ctx context.Context, ns string) (model.PointsAccount, error) {
	return f.points[ns], nil
}

func (f *fakeRepo) SavePoints(ctx context.Context, ns string, acc model.PointsAccount) error {
	f.points[ns] = acc
	return nil
}

func (f *fakeRepo) Coupons(ctx context.Context, ns string) ([]model.Coupon, error) {
	return append([]model.Coupon(nil), f.coupons[ns]...), nil
}

func (f *fakeRepo) SaveCoupons(ctx context.Context, ns string, coupons []model.Coupon) error {
	if f.saveCouponsErr != nil {
		return f.saveCouponsErr
	}
	f.coupons[ns] = append([]model.Coupon(nil), coupons...)
	return nil
}

func (f *fakeRepo) Profile(ctx context.Context, ns string) (*model.User, bool, error) {
	u, ok := f.profiles[ns]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

func (f *fakeRepo) SaveProfile(ctx context.Context, ns string, u *model.User) error {
	cp := *u
	f.profiles[ns] = &cp
	return nil
}

func (f *fakeRepo) UserNamespaces(ctx context.Context) ([]string, error) {
	var out []string
	for ns := range f.profiles {
		out = append(out, ns)
	}
	return out, nil
}

func (f *fakeRepo) PromoSentAt(ctx context.Context, ns string) (time.Time, bool, error) {
	t, ok := f.promoSent[ns]
	return t, ok, nil
}

func (f *fakeRepo) SetPromoSentAt(ctx context.Context, ns string, t time.Time) error {
	f.promoSent[ns] = t
	return nil
}

// stubBackend имитирует удалённый бэкенд и считает обращения к нему.
type stubBackend struct {
	user    *model.User
	userErr error

	loginUser *model.User
	loginErr  error

	registered  *model.User
	registerErr error

	newOrderID    int64
	newOrderErr   error
	newOrderCalls int
	lastOrder     backend.OrderRequest

	updateErr   error
	updateCalls int
	lastUpdate  backend.UserUpdate

	orders    []model.Order
	ordersErr error

	statusCalls []string

	calls int
}

func (b *stubBackend) Register(ctx context.Context, req backend.RegisterRequest) (*model.User, error) {
	b.calls++
	return b.registered, b.registerErr
}

func (b *stubBackend) Login(ctx context.Context, email, password string) (*model.User, error) {
	b.calls++
	return b.loginUser, b.loginErr
}

func (b *stubBackend) GetUser(ctx context.Context, id int64) (*model.User, error) {
	b.calls++
	if b.userErr != nil {
		return nil, b.userErr
	}
	cp := *b.user
	return &cp, nil
}

func (b *stubBackend) UpdateUser(ctx context.Context, id int64, update backend.UserUpdate) (*model.User, error) {
	b.calls++
	b.updateCalls++
	b.lastUpdate = update
	if b.updateErr != nil {
		return nil, b.updateErr
	}
	cp := *b.user
	if update.Pontos != nil {
		cp.Pontos = *update.Pontos
		b.user = &cp
	}
	return &cp, nil
}

func (b *stubBackend) NewOrder(ctx context.Context, req backend.OrderRequest) (int64, error) {
	b.calls++
	b.newOrderCalls++
	b.lastOrder = req
	return b.newOrderID, b.newOrderErr
}

func (b *stubBackend) MyOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	b.calls++
	return b.orders, b.ordersErr
}

func (b *stubBackend) ListOrders(ctx context.Context) ([]model.Order, error) {
	b.calls++
	return b.orders, b.ordersErr
}

func (b *stubBackend) SetOrderStatus(ctx context.Context, orderID int64, acao string) error {
	b.calls++
	b.statusCalls = append(b.statusCalls, acao)
	return nil
}

func (b *stubBackend) ListClients(ctx context.Context) ([]model.User, error) {
	b.calls++
	return nil, nil
}

func (b *stubBackend) DashboardChart(ctx context.Context) (json.RawMessage, error) {
	b.calls++
	return json.RawMessage(`{}`), nil
}

// stubCEP возвращает заранее заданные адреса по CEP.
type stubCEP struct {
	addrs map[string]*cep.Address
	err   error
}

func (c *stubCEP) Lookup(ctx context.Context, code string) (*cep.Address, error) {
	if c.err != nil {
		return nil, c.err
	}
	addr, ok := c.addrs[code]
	if !ok {
		return nil, cep.ErrNotFound
	}
	return addr, nil
}

func newTestService(repo *fakeRepo, be *stubBackend, lookup CEPLookup) *Service {
	return NewService(repo, be, lookup, promo.NewGenerator(), time.Second, time.Hour)
}

func chuteira(qty int) model.CartItem {
	return model.CartItem{
		ProductID: 7,
		Nome:      "Chuteira Society",
		Preco:     10000,
		Tamanho:   "42",
		Quantity:  qty,
	}
}

var errConnRefused = errors.New("dial tcp: connection refused")
