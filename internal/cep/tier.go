package cep

// Tier описывает тарифную зону доставки: фиксированная стоимость в сентаво и срок.
type Tier struct {
	Valor int64
	Prazo string
}

// Магазин отгружает из Santana de Parnaíba/SP, отсюда три зоны.
const (
	localCity  = "Santana de Parnaíba"
	localState = "SP"
)

var (
	tierLocal      = Tier{Valor: 500, Prazo: "1 dia útil (Local)"}
	tierState      = Tier{Valor: 1000, Prazo: "2 a 4 dias úteis"}
	tierInterstate = Tier{Valor: 2000, Prazo: "5 a 10 dias úteis"}
)

// TierFor возвращает тарифную зону для адреса доставки.
func TierFor(addr *Address) Tier {
	if addr.UF != localState {
		return tierInterstate
	}
	if addr.Localidade == localCity {
		return tierLocal
	}
	return tierState
}
