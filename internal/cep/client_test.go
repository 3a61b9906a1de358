package cep

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLookup_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/ws/06501000/json/" {
			t.Fatalf("path = %s, want /ws/06501000/json/", r.URL.Path)
		}

		resp := Address{
			CEP:        "06501-000",
			Logradouro: "Rua Principal",
			Localidade: "Santana de Parnaíba",
			UF:         "SP",
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	addr, err := client.Lookup(ctx, "06501000")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if addr.Localidade != "Santana de Parnaíba" || addr.UF != "SP" {
		t.Fatalf("unexpected address: %+v", addr)
	}
}

func TestLookup_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"erro": true}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.Lookup(ctx, "99999999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name      string
		addr      Address
		wantValor int64
		wantPrazo string
	}{
		{
			name:      "same city",
			addr:      Address{Localidade: "Santana de Parnaíba", UF: "SP"},
			wantValor: 500,
			wantPrazo: "1 dia útil (Local)",
		},
		{
			name:      "same state",
			addr:      Address{Localidade: "Campinas", UF: "SP"},
			wantValor: 1000,
			wantPrazo: "2 a 4 dias úteis",
		},
		{
			name:      "other state",
			addr:      Address{Localidade: "Rio de Janeiro", UF: "RJ"},
			wantValor: 2000,
			wantPrazo: "5 a 10 dias úteis",
		},
		{
			name:      "same city name in other state",
			addr:      Address{Localidade: "Santana de Parnaíba", UF: "RJ"},
			wantValor: 2000,
			wantPrazo: "5 a 10 dias úteis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := TierFor(&tt.addr)
			if tier.Valor != tt.wantValor {
				t.Errorf("Valor = %d, want %d", tier.Valor, tt.wantValor)
			}
			if tier.Prazo != tt.wantPrazo {
				t.Errorf("Prazo = %q, want %q", tier.Prazo, tt.wantPrazo)
			}
		})
	}
}
