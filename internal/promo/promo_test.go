package promo

import (
	"testing"
	"time"
)

func TestCoupon_FromTemplatePool(t *testing.T) {
	g := NewGenerator()
	g.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	c := g.Coupon()

	if c.ID == "" {
		t.Fatalf("coupon must receive a fresh id")
	}
	if c.Validade != "31/01/2026" {
		t.Fatalf("validade = %q, want 31/01/2026", c.Validade)
	}

	found := false
	for _, tpl := range templates {
		if tpl.Codigo == c.Codigo {
			found = true
		}
	}
	if !found {
		t.Fatalf("coupon code %q not from template pool", c.Codigo)
	}
}

func TestCoupon_UniqueIDs(t *testing.T) {
	g := NewGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		c := g.Coupon()
		if seen[c.ID] {
			t.Fatalf("duplicate coupon id %q", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestWelcomeCoupons(t *testing.T) {
	coupons := WelcomeCoupons()

	if len(coupons) != 3 {
		t.Fatalf("len = %d, want 3", len(coupons))
	}
	for _, c := range coupons {
		if c.ID == "" || c.Codigo == "" || c.Validade == "" {
			t.Fatalf("incomplete welcome coupon: %+v", c)
		}
	}
}
