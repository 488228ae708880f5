package fundamentals

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/pkg/httputil"
)

// DateLayout is the wire format of trade dates
const DateLayout = "2006-01-02"

// FineRequest is the body of a fine fundamentals request
type FineRequest struct {
	Date    string             `json:"date"`
	Symbols []contracts.Symbol `json:"symbols"`
}

// HTTPSource reads fundamentals from a remote fscore API
type HTTPSource struct {
	client  *httputil.Client
	baseURL string
}

// NewHTTPSource creates a source for the API at baseURL
func NewHTTPSource(client *httputil.Client, baseURL string) *HTTPSource {
	return &HTTPSource{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Coarse fetches GET /api/fundamentals/coarse?date=
func (s *HTTPSource) Coarse(ctx context.Context, date time.Time) ([]contracts.CoarseFundamental, error) {
	u := s.baseURL + "/api/fundamentals/coarse?date=" + url.QueryEscape(date.Format(DateLayout))

	var out []contracts.CoarseFundamental
	if err := s.client.GetJSON(ctx, u, &out); err != nil {
		return nil, fmt.Errorf("fetch coarse fundamentals: %w", err)
	}
	return out, nil
}

// Fine fetches POST /api/fundamentals/fine
func (s *HTTPSource) Fine(ctx context.Context, date time.Time, symbols []contracts.Symbol) ([]contracts.FineFundamental, error) {
	if len(symbols) == 0 {
		return []contracts.FineFundamental{}, nil
	}

	req := FineRequest{Date: date.Format(DateLayout), Symbols: symbols}

	var out []contracts.FineFundamental
	if err := s.client.PostJSONInto(ctx, s.baseURL+"/api/fundamentals/fine", req, &out); err != nil {
		return nil, fmt.Errorf("fetch fine fundamentals: %w", err)
	}
	return out, nil
}
