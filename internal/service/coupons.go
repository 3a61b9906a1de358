package service

import (
	"context"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
	"github.com/RyanFidelis/soccergear-storefront/internal/promo"
)

// maxCoupons ограничивает число купонов на namespace.
const maxCoupons = 10

// Coupons возвращает купоны namespace. Пустой кошелёк заполняется
// стартовым набором приветственных купонов.
func (s *Service) Coupons(ctx context.Context, ns string) ([]model.Coupon, error) {
	coupons, err := s.repo.Coupons(ctx, ns)
	if err != nil {
		return nil, err
	}
	if len(coupons) > 0 {
		return coupons, nil
	}

	coupons = promo.WelcomeCoupons()
	if err := s.repo.SaveCoupons(ctx, ns, coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// GenerateCoupon выпускает новый купон для namespace. Кошелёк хранит не более
// maxCoupons купонов: новый встаёт в начало, самый старый вытесняется.
func (s *Service) GenerateCoupon(ctx context.Context, ns string) (model.Coupon, error) {
	coupons, err := s.Coupons(ctx, ns)
	if err != nil {
		return model.Coupon{}, err
	}

	c := s.promo.Coupon()
	coupons = append([]model.Coupon{c}, coupons...)
	if len(coupons) > maxCoupons {
		coupons = coupons[:maxCoupons]
	}

	if err := s.repo.SaveCoupons(ctx, ns, coupons); err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}
