// Package promo генерирует промо-купоны витрины из фиксированного пула шаблонов.
package promo

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

// templates — пул шаблонов, из которого собираются новые купоны.
var templates = []model.Coupon{
	{
		TituloHeader: "Desconto Imperdível",
		Codigo:       "GOLEADOR15",
		Titulo:       "15% OFF em chuteiras",
		Descricao:    "Modelos de chuteiras com desconto especial por tempo limitado.",
		Desconto:     "15% OFF",
		Tag:          "Oferta",
	},
	{
		TituloHeader: "Frete Grátis Especial",
		Codigo:       "FRETEFC",
		Titulo:       "Frete Grátis acima de R$ 99",
		Descricao:    "Ganhe frete grátis em compras acima de R$ 99,00 em todo o site.",
		Desconto:     "FRETE GRÁTIS",
		Tag:          "Popular",
	},
	{
		TituloHeader: "Cashback Futebol",
		Codigo:       "CASH10FC",
		Titulo:       "10% de cashback em camisas",
		Descricao:    "Compre camisas oficiais e receba 10% de volta em créditos.",
		Desconto:     "10% CASHBACK",
	},
}

// Generator выдаёт купоны из пула шаблонов. Потокобезопасен.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewGenerator создаёт генератор купонов.
func NewGenerator() *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// Coupon возвращает новый купон со свежим идентификатором и сроком действия
// 30 дней с текущего момента.
func (g *Generator) Coupon() model.Coupon {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := templates[g.rnd.Intn(len(templates))]
	c.ID = uuid.NewString()
	c.Validade = g.now().AddDate(0, 0, 30).Format("02/01/2006")
	return c
}

// WelcomeCoupons возвращает стартовый набор купонов для нового пользователя.
func WelcomeCoupons() []model.Coupon {
	validade := time.Now().AddDate(0, 0, 30).Format("02/01/2006")

	return []model.Coupon{
		{
			ID:           uuid.NewString(),
			Tag:          "Popular",
			TituloHeader: "Desconto de Boas-Vindas",
			Codigo:       "BEMVINDO20",
			Titulo:       "20% OFF na Primeira Compra",
			Descricao:    "Desconto especial para novos clientes. Válido para compras acima de R$ 50,00.",
			Validade:     validade,
			Desconto:     "20% OFF",
		},
		{
			ID:           uuid.NewString(),
			TituloHeader: "Frete Grátis",
			Codigo:       "FRETEGRATIS",
			Titulo:       "Frete Grátis em Todo o Site",
			Descricao:    "Economize no frete em qualquer compra, independente do valor.",
			Validade:     validade,
			Desconto:     "FRETE GRÁTIS",
		},
		{
			ID:           uuid.NewString(),
			Tag:          "Oferta",
			TituloHeader: "Super Desconto",
			Codigo:       "SUPER30",
			Titulo:       "30% OFF em camisas oficiais",
			Descricao:    "Aproveite o super desconto para renovar seu uniforme!",
			Validade:     validade,
			Desconto:     "30% OFF",
		},
	}
}
