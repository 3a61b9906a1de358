package service

// Event описывает событие витрины, доставляемое подписчикам: новое уведомление,
// изменение корзины. Подписчики используют события как сигнал перечитать состояние.
type Event struct {
	Type      string `json:"type"`
	Namespace string `json:"-"`
}

// Типы событий витрины.
const (
	EventNotification = "notification"
	EventCartChanged  = "cart"
)

// Subscribe регистрирует подписчика на события витрины. Возвращает канал
// событий и функцию отписки, которую вызывающий обязан вызвать.
func (s *Service) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		delete(s.subscribers, ch)
		s.subMu.Unlock()
	}
	return ch, cancel
}

// publish рассылает событие всем подписчикам, не блокируясь: медленный
// подписчик теряет события, но не задерживает остальных.
func (s *Service) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
