package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

// defaultSize присваивается товарам без размерной сетки.
const defaultSize = "Único"

// Cart возвращает корзину namespace.
func (s *Service) Cart(ctx context.Context, ns string) ([]model.CartItem, error) {
	return s.repo.Cart(ctx, ns)
}

// AddToCart добавляет товар в корзину. Повторное добавление того же товара
// в том же размере увеличивает количество существующей позиции, а не создаёт
// новую. Возвращает корзину после изменения.
func (s *Service) AddToCart(ctx context.Context, ns string, item model.CartItem) ([]model.CartItem, error) {
	if item.ProductID <= 0 {
		return nil, validationError("produto inválido")
	}
	if strings.TrimSpace(item.Nome) == "" {
		return nil, validationError("produto sem nome")
	}
	if item.Preco < 0 {
		return nil, validationError("preço inválido")
	}
	if item.Tamanho == "" {
		item.Tamanho = defaultSize
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.UID = cartUID(item.ProductID, item.Tamanho)

	items, err := s.repo.Cart(ctx, ns)
	if err != nil {
		return nil, err
	}

	items = mergeCartItem(items, item)

	if err := s.repo.SaveCart(ctx, ns, items); err != nil {
		return nil, err
	}

	s.publish(Event{Type: EventCartChanged, Namespace: ns})
	return items, nil
}

// UpdateQuantity изменяет количество позиции на delta. Падение ниже единицы
// удаляет позицию из корзины.
func (s *Service) UpdateQuantity(ctx context.Context, ns, uid string, delta int) ([]model.CartItem, error) {
	items, err := s.repo.Cart(ctx, ns)
	if err != nil {
		return nil, err
	}

	updated := items[:0]
	for _, it := range items {
		if it.UID != uid {
			updated = append(updated, it)
			continue
		}
		it.Quantity += delta
		if it.Quantity >= 1 {
			updated = append(updated, it)
		}
	}

	if err := s.repo.SaveCart(ctx, ns, updated); err != nil {
		return nil, err
	}

	s.publish(Event{Type: EventCartChanged, Namespace: ns})
	return updated, nil
}

// RemoveFromCart удаляет позицию из корзины по uid.
func (s *Service) RemoveFromCart(ctx context.Context, ns, uid string) ([]model.CartItem, error) {
	items, err := s.repo.Cart(ctx, ns)
	if err != nil {
		return nil, err
	}

	updated := items[:0]
	for _, it := range items {
		if it.UID != uid {
			updated = append(updated, it)
		}
	}

	if err := s.repo.SaveCart(ctx, ns, updated); err != nil {
		return nil, err
	}

	s.publish(Event{Type: EventCartChanged, Namespace: ns})
	return updated, nil
}

// Subtotal возвращает суммарную стоимость позиций в сентаво.
func Subtotal(items []model.CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Preco * int64(it.Quantity)
	}
	return total
}

func cartUID(productID int64, tamanho string) string {
	return fmt.Sprintf("%d-%s", productID, tamanho)
}

// mergeCartItem добавляет позицию в список, сливая её с существующей
// позицией того же товара в том же размере.
func mergeCartItem(items []model.CartItem, item model.CartItem) []model.CartItem {
	for i, it := range items {
		if it.ProductID == item.ProductID && it.Tamanho == item.Tamanho {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}
