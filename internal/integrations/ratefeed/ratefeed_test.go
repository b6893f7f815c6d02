package ratefeed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/gold-savings/internal/config"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `<?xml version="1.0" encoding="utf-8"?>
<Envelope>
  <Body>
    <MetalRates published="2025-03-01T09:30:00+05:30">
      <Rate karat="22K"><PerGram>6645.00</PerGram></Rate>
      <Rate karat="24k"><PerGram> 7250.50 </PerGram></Rate>
      <Rate karat="18K" effectiveFrom="2025-03-01T06:00:00Z"><PerGram>5437.88</PerGram></Rate>
    </MetalRates>
  </Body>
</Envelope>`

func newTestClient(url string) *Client {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewClient(&config.Config{RateFeedURL: url}, log)
}

func TestParseXMLResponse(t *testing.T) {
	quotes, err := parseXMLResponse([]byte(feed))
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	assert.Equal(t, models.Karat22, quotes[0].Karat)
	assert.True(t, quotes[0].RatePerGram.Equal(decimal.RequireFromString("6645")))
	assert.Equal(t, time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC), quotes[0].EffectiveFrom)

	assert.Equal(t, models.Karat24, quotes[1].Karat)
	assert.True(t, quotes[1].RatePerGram.Equal(decimal.RequireFromString("7250.5")))

	assert.Equal(t, time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC), quotes[2].EffectiveFrom)
}

func TestParseXMLResponse_Errors(t *testing.T) {
	cases := map[string]string{
		"malformed":     `<MetalRates`,
		"missing root":  `<Other/>`,
		"bad timestamp": `<MetalRates published="yesterday"><Rate karat="22K"><PerGram>1</PerGram></Rate></MetalRates>`,
		"bad karat":     `<MetalRates published="2025-03-01T00:00:00Z"><Rate karat="14K"><PerGram>1</PerGram></Rate></MetalRates>`,
		"negative":      `<MetalRates published="2025-03-01T00:00:00Z"><Rate karat="22K"><PerGram>-5</PerGram></Rate></MetalRates>`,
		"empty":         `<MetalRates published="2025-03-01T00:00:00Z"></MetalRates>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseXMLResponse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestFetchRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	quotes, err := newTestClient(srv.URL).FetchRates(context.Background())
	require.NoError(t, err)
	assert.Len(t, quotes, 3)
}

func TestFetchRates_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchRates(context.Background())
	assert.ErrorContains(t, err, "unexpected status code: 502")
}
