package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

// Favorites возвращает избранное namespace.
func (s *Service) Favorites(ctx context.Context, ns string) ([]model.Favorite, error) {
	return s.repo.Favorites(ctx, ns)
}

// ToggleFavorite добавляет товар в избранное либо убирает его, если он уже
// там. Возвращает избранное после изменения и признак добавления.
func (s *Service) ToggleFavorite(ctx context.Context, ns string, fav model.Favorite) ([]model.Favorite, bool, error) {
	if fav.ProductID <= 0 {
		return nil, false, validationError("produto inválido")
	}
	if fav.Preco < 0 {
		return nil, false, validationError("preço inválido")
	}
	if fav.UID == "" {
		categoria := fav.Categoria
		if categoria == "" {
			categoria = "produto"
		}
		fav.UID = fmt.Sprintf("%s-%d", strings.ToLower(categoria), fav.ProductID)
	}

	favs, err := s.repo.Favorites(ctx, ns)
	if err != nil {
		return nil, false, err
	}

	updated := favs[:0]
	removed := false
	for _, f := range favs {
		if f.UID == fav.UID {
			removed = true
			continue
		}
		updated = append(updated, f)
	}
	if !removed {
		updated = append(updated, fav)
	}

	if err := s.repo.SaveFavorites(ctx, ns, updated); err != nil {
		return nil, false, err
	}
	return updated, !removed, nil
}
