// Package backend предоставляет клиент удалённого REST-бэкенда магазина.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

// Error описывает отказ бэкенда с человекочитаемым сообщением.
// Сообщение показывается пользователю дословно.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend status %d", e.StatusCode)
}

// Client инкапсулирует HTTP-взаимодействие с бэкендом магазина.
// Запросы не повторяются автоматически: любая ошибка сразу возвращается вызывающему.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт HTTP-клиент для обращения к бэкенду по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// RegisterRequest содержит данные регистрации нового пользователя.
type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Telefone       string `json:"telefone"`
	DataNascimento string `json:"dataNascimento"`
	Password       string `json:"password"`
}

// UserUpdate содержит частичное обновление профиля. Только непустые поля
// попадают в тело запроса.
type UserUpdate struct {
	Name           *string `json:"name,omitempty"`
	Telefone       *string `json:"telefone,omitempty"`
	DataNascimento *string `json:"dataNascimento,omitempty"`
	TimeCoracao    *string `json:"timeCoracao,omitempty"`
	Endereco       *string `json:"endereco,omitempty"`
	Foto           *string `json:"foto,omitempty"`
	Pontos         *int64  `json:"pontos,omitempty"`
	Password       *string `json:"password,omitempty"`
}

// OrderRequest описывает заказ, отправляемый на бэкенд при подтверждении оплаты.
type OrderRequest struct {
	Cliente           *model.User        `json:"cliente"`
	Itens             []model.CartItem   `json:"-"`
	Metodo            string             `json:"metodo"`
	DetalhesPagamento *model.PaymentCard `json:"detalhesPagamento"`
	TotalCentavos     int64              `json:"-"`
	Status            model.OrderStatus  `json:"status"`
}

type authResponse struct {
	Sucesso bool        `json:"sucesso"`
	User    *model.User `json:"user"`
	Message string      `json:"message"`
}

type itemWire struct {
	ID       int64   `json:"id"`
	UID      string  `json:"uid,omitempty"`
	Nome     string  `json:"nome"`
	Imagem   string  `json:"imagem,omitempty"`
	Preco    float64 `json:"preco"`
	Tamanho  string  `json:"tamanho"`
	Quantity int     `json:"quantity"`
}

type orderWire struct {
	ID     int64      `json:"id"`
	Itens  []itemWire `json:"itens"`
	Metodo string     `json:"metodo"`
	Total  float64    `json:"total"`
	Status string     `json:"status"`
	Data   string     `json:"data"`
}

// Бэкенд считает деньги в реалах с плавающей точкой, витрина — в сентаво.
func toReais(centavos int64) float64 {
	return float64(centavos) / 100
}

func toCentavos(reais float64) int64 {
	return int64(math.Round(reais * 100))
}

func itemsToWire(items []model.CartItem) []itemWire {
	res := make([]itemWire, 0, len(items))
	for _, it := range items {
		res = append(res, itemWire{
			ID:       it.ProductID,
			UID:      it.UID,
			Nome:     it.Nome,
			Imagem:   it.Imagem,
			Preco:    toReais(it.Preco),
			Tamanho:  it.Tamanho,
			Quantity: it.Quantity,
		})
	}
	return res
}

func orderFromWire(w orderWire) model.Order {
	items := make([]model.CartItem, 0, len(w.Itens))
	for _, it := range w.Itens {
		items = append(items, model.CartItem{
			ProductID: it.ID,
			UID:       it.UID,
			Nome:      it.Nome,
			Imagem:    it.Imagem,
			Preco:     toCentavos(it.Preco),
			Tamanho:   it.Tamanho,
			Quantity:  it.Quantity,
		})
	}
	return model.Order{
		ID:     w.ID,
		Itens:  items,
		Metodo: w.Metodo,
		Total:  toCentavos(w.Total),
		Status: model.OrderStatus(w.Status),
		Data:   w.Data,
	}
}

func (c *Client) url(path string) string {
	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return base + path
}

// doJSON выполняет один запрос к бэкенду. Ответы вне 2xx превращаются в *Error
// с дословным сообщением сервера, когда оно есть.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("backend client not configured")
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &Error{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Register регистрирует пользователя на бэкенде и возвращает созданный профиль.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("backend returned no user")
	}
	return resp.User, nil
}

// Login выполняет аутентификацию по email и паролю.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	body := map[string]string{"email": email, "password": password}

	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("backend returned no user")
	}
	return resp.User, nil
}

// GetUser возвращает профиль пользователя по идентификатору.
func (c *Client) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/auth/user/%d", id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser отправляет частичное обновление профиля и возвращает обновлённый профиль.
func (c *Client) UpdateUser(ctx context.Context, id int64, update UserUpdate) (*model.User, error) {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/auth/update/%d", id), update, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("backend returned no user")
	}
	return resp.User, nil
}

type newOrderWire struct {
	Cliente           *model.User        `json:"cliente"`
	Itens             []itemWire         `json:"itens"`
	Metodo            string             `json:"metodo"`
	DetalhesPagamento *model.PaymentCard `json:"detalhesPagamento"`
	Total             float64            `json:"total"`
	Status            model.OrderStatus  `json:"status"`
}

type newOrderResponse struct {
	Sucesso bool   `json:"sucesso"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Pedido  *struct {
		ID int64 `json:"id"`
	} `json:"pedido"`
}

// NewOrder создаёт заказ на бэкенде. Возвращает идентификатор заказа,
// если бэкенд его сообщил, иначе ноль.
func (c *Client) NewOrder(ctx context.Context, req OrderRequest) (int64, error) {
	wire := newOrderWire{
		Cliente:           req.Cliente,
		Itens:             itemsToWire(req.Itens),
		Metodo:            req.Metodo,
		DetalhesPagamento: req.DetalhesPagamento,
		Total:             toReais(req.TotalCentavos),
		Status:            req.Status,
	}

	var resp newOrderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/pedido/novo", wire, &resp); err != nil {
		return 0, err
	}
	if !resp.Sucesso {
		return 0, &Error{StatusCode: http.StatusOK, Message: resp.Message}
	}

	if resp.ID != 0 {
		return resp.ID, nil
	}
	if resp.Pedido != nil {
		return resp.Pedido.ID, nil
	}
	return 0, nil
}

// MyOrders возвращает заказы указанного пользователя.
func (c *Client) MyOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	var wires []orderWire
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/pedido/meus-pedidos/%d", userID), nil, &wires); err != nil {
		return nil, err
	}

	orders := make([]model.Order, 0, len(wires))
	for _, w := range wires {
		orders = append(orders, orderFromWire(w))
	}
	return orders, nil
}

// ListOrders возвращает все заказы магазина (административный вызов).
func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var wires []orderWire
	if err := c.doJSON(ctx, http.MethodGet, "/api/pedidos", nil, &wires); err != nil {
		return nil, err
	}

	orders := make([]model.Order, 0, len(wires))
	for _, w := range wires {
		orders = append(orders, orderFromWire(w))
	}
	return orders, nil
}

// SetOrderStatus применяет административное действие к заказу:
// acao принимает значения "aprovar" или "rejeitar".
func (c *Client) SetOrderStatus(ctx context.Context, orderID int64, acao string) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/pedido/%s/%d", acao, orderID), nil, nil)
}

// ListClients возвращает список клиентов магазина (административный вызов).
func (c *Client) ListClients(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/clientes", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DashboardChart возвращает данные графика продаж без интерпретации.
func (c *Client) DashboardChart(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/chart", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
