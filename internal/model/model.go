// Package model содержит доменные сущности витрины SoccerGear.
package model

import "time"

// User представляет профиль пользователя, зеркалируемый из удалённого бэкенда.
// Авторитетный источник данных профиля и баланса баллов — бэкенд.
type User struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Telefone       string `json:"telefone,omitempty"`
	DataNascimento string `json:"dataNascimento,omitempty"`
	TimeCoracao    string `json:"timeCoracao,omitempty"`
	Endereco       string `json:"endereco,omitempty"`
	Pontos         int64  `json:"pontos"`
	Foto           string `json:"foto,omitempty"`
}

// CartItem описывает одну позицию корзины: товар в конкретном размере.
// Цена хранится в сентаво.
type CartItem struct {
	ProductID int64  `json:"id"`
	UID       string `json:"uid,omitempty"`
	Nome      string `json:"nome"`
	Imagem    string `json:"imagem,omitempty"`
	Preco     int64  `json:"preco"`
	Tamanho   string `json:"tamanho"`
	Quantity  int    `json:"quantity"`
}

// ShippingQuote описывает рассчитанную стоимость доставки по CEP.
// Valor хранится в сентаво.
type ShippingQuote struct {
	CEP    string `json:"cep"`
	Rua    string `json:"rua,omitempty"`
	Cidade string `json:"cidade"`
	UF     string `json:"uf"`
	Prazo  string `json:"prazo"`
	Valor  int64  `json:"valor"`
}

// Checkout представляет подготовленную к оплате покупку: снимок корзины
// и подтверждённый расчёт доставки.
type Checkout struct {
	Items     []CartItem     `json:"items"`
	Frete     *ShippingQuote `json:"frete,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// OrderStatus описывает статус заказа на удалённом бэкенде.
type OrderStatus string

const (
	OrderStatusAguardando OrderStatus = "aguardando"
	OrderStatusAprovado   OrderStatus = "aprovado"
	OrderStatusRejeitado  OrderStatus = "rejeitado"
)

// Order описывает заказ пользователя в том виде, в котором его отдаёт бэкенд.
// Total хранится в сентаво.
type Order struct {
	ID     int64       `json:"id"`
	Itens  []CartItem  `json:"itens,omitempty"`
	Metodo string      `json:"metodo,omitempty"`
	Total  int64       `json:"total"`
	Status OrderStatus `json:"status"`
	Data   string      `json:"data,omitempty"`
}

// NotificationCategory описывает категорию уведомления.
type NotificationCategory string

const (
	NotificationAprovado    NotificationCategory = "aprovado"
	NotificationRejeitado   NotificationCategory = "rejeitado"
	NotificationPendente    NotificationCategory = "pendente"
	NotificationPromocional NotificationCategory = "promocional"
)

// CategoryForStatus отображает статус заказа в категорию уведомления.
func CategoryForStatus(status OrderStatus) (NotificationCategory, bool) {
	switch status {
	case OrderStatusAprovado:
		return NotificationAprovado, true
	case OrderStatusRejeitado:
		return NotificationRejeitado, true
	case OrderStatusAguardando:
		return NotificationPendente, true
	}
	return "", false
}

// Notification описывает уведомление пользователя. ExternalID служит ключом
// дедупликации: ровно одно уведомление на пару (заказ, статус).
type Notification struct {
	ID         string               `json:"id"`
	ExternalID string               `json:"idExterno,omitempty"`
	Categoria  NotificationCategory `json:"categoria"`
	Titulo     string               `json:"titulo"`
	Descricao  string               `json:"descricao"`
	Lida       bool                 `json:"lida"`
	Data       time.Time            `json:"data"`
}

// Favorite описывает снимок товара в избранном. UID — составной ключ
// вида "{категория}-{id товара}".
type Favorite struct {
	UID       string `json:"uid"`
	ProductID int64  `json:"id"`
	Nome      string `json:"nome"`
	Imagem    string `json:"imagem,omitempty"`
	Preco     int64  `json:"preco"`
	Categoria string `json:"categoria,omitempty"`
}

// Coupon описывает купон на скидку.
type Coupon struct {
	ID           string `json:"id"`
	TituloHeader string `json:"tituloHeader"`
	Codigo       string `json:"codigo"`
	Titulo       string `json:"titulo"`
	Descricao    string `json:"descricao"`
	Validade     string `json:"validade"`
	Desconto     string `json:"desconto"`
	Tag          string `json:"tag,omitempty"`
}

// PointsEntry описывает одну запись истории бонусных баллов.
// Valor отрицателен для списаний.
type PointsEntry struct {
	Tipo  string    `json:"tipo"`
	Valor int64     `json:"valor"`
	Item  string    `json:"item,omitempty"`
	Data  time.Time `json:"data"`
}

// PointsAccount содержит баланс бонусных баллов и историю операций.
type PointsAccount struct {
	Saldo     int64         `json:"saldo"`
	Historico []PointsEntry `json:"historico"`
}

// Reward описывает приз, доступный за бонусные баллы.
type Reward struct {
	ID     int64  `json:"id"`
	Nome   string `json:"nome"`
	Custo  int64  `json:"custo"`
	Imagem string `json:"imagem,omitempty"`
	Tag    string `json:"tag,omitempty"`
}

// PaymentCard содержит данные карты, передаваемые бэкенду при оплате картой.
type PaymentCard struct {
	Numero   string `json:"numero"`
	Nome     string `json:"nome"`
	CPF      string `json:"cpf"`
	Validade string `json:"validade"`
	CVV      string `json:"cvv"`
	Tipo     string `json:"tipo"`
	Bandeira string `json:"bandeira"`
}
