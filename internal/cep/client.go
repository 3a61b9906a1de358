// Package cep предоставляет клиент сервиса поиска адреса по CEP
// и расчёт стоимости доставки по фиксированным тарифным зонам.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound возвращается, когда сервис не знает указанный CEP.
var ErrNotFound = errors.New("cep not found")

// Client инкапсулирует HTTP-взаимодействие с сервисом поиска по CEP (формат ViaCEP).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Address описывает ответ сервиса по одному CEP.
type Address struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// NewClient создаёт HTTP-клиент для обращения к сервису поиска по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Lookup запрашивает адрес по CEP из восьми цифр.
func (c *Client) Lookup(ctx context.Context, cep string) (*Address, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("cep client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	url := fmt.Sprintf("%s/ws/%s/json/", base, cep)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var addr Address
	if err := json.NewDecoder(resp.Body).Decode(&addr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if addr.Erro {
		return nil, ErrNotFound
	}

	return &addr, nil
}
