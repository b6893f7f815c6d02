package ratefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dan9191/gold-savings/internal/config"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Quote is one published metal rate
type Quote struct {
	Karat         models.Karat
	RatePerGram   decimal.Decimal
	EffectiveFrom time.Time
}

// Client fetches published metal rates from the bullion feed
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new rate feed client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.RateFeedURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// sendRequest downloads the raw feed document
func (c *Client) sendRequest(ctx context.Context) ([]byte, error) {
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

	c.log.Debugf("Rate feed XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts quotes from
// <MetalRates published="..."><Rate karat="22K"><PerGram>..</PerGram></Rate></MetalRates>.
// A Rate may carry its own effectiveFrom attribute overriding published.
func parseXMLResponse(rawBody []byte) ([]Quote, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := doc.FindElement("//MetalRates")
	if root == nil {
		return nil, fmt.Errorf("no MetalRates element found in XML")
	}
	published, err := parseTime(root.SelectAttrValue("published", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid published timestamp: %w", err)
	}

	var quotes []Quote
	for _, el := range root.SelectElements("Rate") {
		karat := models.Karat(strings.ToUpper(el.SelectAttrValue("karat", "")))
		if !karat.Valid() {
			return nil, fmt.Errorf("unsupported karat %q", karat)
		}

		perGram := el.SelectElement("PerGram")
		if perGram == nil {
			return nil, fmt.Errorf("PerGram element not found for %s", karat)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(perGram.Text()))
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for %s: %w", karat, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("non-positive rate for %s", karat)
		}

		effective := published
		if v := el.SelectAttrValue("effectiveFrom", ""); v != "" {
			if effective, err = parseTime(v); err != nil {
				return nil, fmt.Errorf("invalid effectiveFrom for %s: %w", karat, err)
			}
		}
		quotes = append(quotes, Quote{Karat: karat, RatePerGram: rate, EffectiveFrom: effective})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no rate data found in XML")
	}
	return quotes, nil
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FetchRates retrieves the currently published rates
func (c *Client) FetchRates(ctx context.Context) ([]Quote, error) {
	body, err := c.sendRequest(ctx)
	if err != nil {
		return nil, err
	}

	quotes, err := parseXMLResponse(body)
	if err != nil {
		return nil, err
	}

	c.log.Infof("Retrieved %d metal rates from feed", len(quotes))
	return quotes, nil
}
