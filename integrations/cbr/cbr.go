// Package cbr reads the Central Bank of Russia daily rate sheet and re-bases
// it onto any currency the sheet lists.
package cbr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"emi-calculator/domain"
)

const (
	DefaultURL = "https://www.cbr.ru/scripts/XML_daily.asp"
	rouble     = "RUB"
)

// CBRClient handles integration with the Central Bank of Russia
type CBRClient struct {
	url    string
	client *http.Client
	log    logrus.FieldLogger
}

// NewCBRClient initializes a new CBR client
func NewCBRClient(url string, timeout time.Duration, log logrus.FieldLogger) *CBRClient {
	if url == "" {
		url = DefaultURL
	}
	return &CBRClient{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// sendRequest fetches the raw XML sheet
func (c *CBRClient) sendRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("CBR XML response: %d bytes", len(body))
	return body, nil
}

// parseXMLResponse returns roubles per one unit of each listed currency and
// the sheet date.
func (c *CBRClient) parseXMLResponse(rawBody []byte) (map[string]float64, time.Time, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := doc.SelectElement("ValCurs")
	if root == nil {
		return nil, time.Time{}, fmt.Errorf("ValCurs element not found in XML")
	}

	var asOf time.Time
	if date := root.SelectAttrValue("Date", ""); date != "" {
		if parsed, err := time.Parse("02.01.2006", date); err == nil {
			asOf = parsed
		}
	}

	valutes := root.FindElements("./Valute")
	if len(valutes) == 0 {
		return nil, time.Time{}, fmt.Errorf("no currency data found in XML")
	}

	roublesPer := map[string]float64{rouble: 1}
	for _, v := range valutes {
		code := strings.ToUpper(strings.TrimSpace(childText(v, "CharCode")))
		if code == "" {
			continue
		}
		nominal, err := parseNumber(childText(v, "Nominal"))
		if err != nil || nominal <= 0 {
			c.log.WithField("code", code).Warn("skipping currency with invalid nominal")
			continue
		}
		value, err := parseNumber(childText(v, "Value"))
		if err != nil || value <= 0 {
			c.log.WithField("code", code).Warn("skipping currency with invalid value")
			continue
		}
		roublesPer[code] = value / nominal
	}

	return roublesPer, asOf, nil
}

// FetchRates implements service.RateSource.
func (c *CBRClient) FetchRates(ctx context.Context, base string) (domain.RateTable, error) {
	base = strings.ToUpper(base)

	body, err := c.sendRequest(ctx)
	if err != nil {
		return domain.RateTable{}, err
	}

	roublesPer, asOf, err := c.parseXMLResponse(body)
	if err != nil {
		return domain.RateTable{}, err
	}

	basePrice, ok := roublesPer[base]
	if !ok {
		return domain.RateTable{}, fmt.Errorf("currency %s is not quoted by CBR", base)
	}

	rates := make(map[string]float64, len(roublesPer))
	for code, price := range roublesPer {
		rates[code] = basePrice / price
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	c.log.Infof("Retrieved %d CBR rates for base %s", len(rates), base)
	return domain.RateTable{Base: base, Rates: rates, FetchedAt: asOf}, nil
}

func childText(e *etree.Element, tag string) string {
	child := e.SelectElement(tag)
	if child == nil {
		return ""
	}
	return child.Text()
}

// parseNumber accepts the comma decimal separator used in the sheet.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	case "utf-8", "":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}
