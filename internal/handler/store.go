package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

type cartItemJSON struct {
	ID       int64   `json:"id"`
	UID      string  `json:"uid,omitempty"`
	Nome     string  `json:"nome"`
	Imagem   string  `json:"imagem,omitempty"`
	Preco    float64 `json:"preco"`
	Tamanho  string  `json:"tamanho"`
	Quantity int     `json:"quantity"`
}

func cartToJSON(items []model.CartItem) []cartItemJSON {
	out := make([]cartItemJSON, 0, len(items))
	for _, it := range items {
		out = append(out, cartItemJSON{
			ID:       it.ProductID,
			UID:      it.UID,
			Nome:     it.Nome,
			Imagem:   it.Imagem,
			Preco:    reais(it.Preco),
			Tamanho:  it.Tamanho,
			Quantity: it.Quantity,
		})
	}
	return out
}

// GetCart возвращает корзину текущего namespace.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Cart(r.Context(), namespaceFromRequest(r))
	if err != nil {
		h.respondError(w, err, "get cart")
		return
	}
	h.writeJSON(w, http.StatusOK, cartToJSON(items))
}

// AddToCart добавляет товар в корзину текущего namespace.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	items, err := h.service.AddToCart(r.Context(), namespaceFromRequest(r), model.CartItem{
		ProductID: req.ID,
		Nome:      req.Nome,
		Imagem:    req.Imagem,
		Preco:     centavos(req.Preco),
		Tamanho:   req.Tamanho,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.respondError(w, err, "add to cart")
		return
	}

	h.writeJSON(w, http.StatusOK, cartToJSON(items))
}

type quantityRequest struct {
	Delta int `json:"delta"`
}

// UpdateCartItem изменяет количество позиции корзины на delta.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if req.Delta == 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	items, err := h.service.UpdateQuantity(r.Context(), namespaceFromRequest(r), chi.URLParam(r, "uid"), req.Delta)
	if err != nil {
		h.respondError(w, err, "update cart item")
		return
	}

	h.writeJSON(w, http.StatusOK, cartToJSON(items))
}

// RemoveCartItem удаляет позицию корзины.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.RemoveFromCart(r.Context(), namespaceFromRequest(r), chi.URLParam(r, "uid"))
	if err != nil {
		h.respondError(w, err, "remove cart item")
		return
	}
	h.writeJSON(w, http.StatusOK, cartToJSON(items))
}

type favoriteJSON struct {
	UID       string  `json:"uid,omitempty"`
	ID        int64   `json:"id"`
	Nome      string  `json:"nome"`
	Imagem    string  `json:"imagem,omitempty"`
	Preco     float64 `json:"preco"`
	Categoria string  `json:"categoria,omitempty"`
}

func favoritesToJSON(favs []model.Favorite) []favoriteJSON {
	out := make([]favoriteJSON, 0, len(favs))
	for _, f := range favs {
		out = append(out, favoriteJSON{
			UID:       f.UID,
			ID:        f.ProductID,
			Nome:      f.Nome,
			Imagem:    f.Imagem,
			Preco:     reais(f.Preco),
			Categoria: f.Categoria,
		})
	}
	return out
}

// GetFavorites возвращает избранное текущего namespace.
func (h *Handler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.service.Favorites(r.Context(), namespaceFromRequest(r))
	if err != nil {
		h.respondError(w, err, "get favorites")
		return
	}
	h.writeJSON(w, http.StatusOK, favoritesToJSON(favs))
}

type toggleFavoriteResponse struct {
	Adicionado bool           `json:"adicionado"`
	Favoritos  []favoriteJSON `json:"favoritos"`
}

// ToggleFavorite добавляет товар в избранное либо убирает его.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	favs, added, err := h.service.ToggleFavorite(r.Context(), namespaceFromRequest(r), model.Favorite{
		UID:       req.UID,
		ProductID: req.ID,
		Nome:      req.Nome,
		Imagem:    req.Imagem,
		Preco:     centavos(req.Preco),
		Categoria: req.Categoria,
	})
	if err != nil {
		h.respondError(w, err, "toggle favorite")
		return
	}

	h.writeJSON(w, http.StatusOK, toggleFavoriteResponse{
		Adicionado: added,
		Favoritos:  favoritesToJSON(favs),
	})
}

// GetCoupons возвращает купоны текущего namespace.
func (h *Handler) GetCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.Coupons(r.Context(), namespaceFromRequest(r))
	if err != nil {
		h.respondError(w, err, "get coupons")
		return
	}
	h.writeJSON(w, http.StatusOK, coupons)
}

// GenerateCoupon выпускает новый купон для текущего namespace.
func (h *Handler) GenerateCoupon(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.service.GenerateCoupon(r.Context(), namespaceFromRequest(r))
	if err != nil {
		h.respondError(w, err, "generate coupon")
		return
	}
	h.writeJSON(w, http.StatusOK, coupon)
}
