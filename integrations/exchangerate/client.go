// Package exchangerate fetches rate tables from the ExchangeRate-API v6
// "latest" endpoint.
package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"emi-calculator/domain"
)

const DefaultURL = "https://v6.exchangerate-api.com"

var ErrMissingAPIKey = errors.New("exchange rate API key is not configured")

// ProviderError is a well-formed response whose result is not "success".
type ProviderError struct {
	Type string
}

func (e *ProviderError) Error() string {
	if e.Type == "" {
		return "rate provider reported a failure"
	}
	return fmt.Sprintf("rate provider reported a failure: %s", e.Type)
}

type latestResponse struct {
	Result             string             `json:"result"`
	ErrorType          string             `json:"error-type"`
	BaseCode           string             `json:"base_code"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logrus.FieldLogger
}

// NewClient builds a client; the http.Client timeout bounds every request.
func NewClient(baseURL, apiKey string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// FetchRates implements service.RateSource.
func (c *Client) FetchRates(ctx context.Context, base string) (domain.RateTable, error) {
	if c.apiKey == "" {
		return domain.RateTable{}, ErrMissingAPIKey
	}
	base = strings.ToUpper(base)
	url := fmt.Sprintf("%s/v6/%s/latest/%s", c.baseURL, c.apiKey, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// The provider still sends a JSON failure body on most errors.
		var failure latestResponse
		if json.Unmarshal(body, &failure) == nil && failure.ErrorType != "" {
			return domain.RateTable{}, fmt.Errorf("unexpected status code %d: %w", resp.StatusCode, &ProviderError{Type: failure.ErrorType})
		}
		return domain.RateTable{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return c.parse(base, body)
}

func (c *Client) parse(base string, body []byte) (domain.RateTable, error) {
	var payload latestResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.RateTable{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if payload.Result != "success" {
		return domain.RateTable{}, &ProviderError{Type: payload.ErrorType}
	}
	if len(payload.ConversionRates) == 0 {
		return domain.RateTable{}, errors.New("response carried no conversion rates")
	}

	rates := make(map[string]float64, len(payload.ConversionRates))
	for code, rate := range payload.ConversionRates {
		if rate <= 0 {
			c.log.WithFields(logrus.Fields{"base": base, "code": code}).Warn("skipping non-positive rate")
			continue
		}
		rates[strings.ToUpper(code)] = rate
	}

	fetchedAt := time.Now()
	if payload.TimeLastUpdateUnix > 0 {
		fetchedAt = time.Unix(payload.TimeLastUpdateUnix, 0)
	}

	c.log.WithFields(logrus.Fields{"base": base, "currencies": len(rates)}).Debug("fetched exchange rates")
	return domain.RateTable{Base: base, Rates: rates, FetchedAt: fetchedAt}, nil
}
