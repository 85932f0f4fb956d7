// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/partswap/internal/httputil"
	"github.com/pdiddy/partswap/pkg/types"
)

// digikeyAPIBase is the Digi-Key API root. Declared as a var so tests can
// substitute an httptest server.
var digikeyAPIBase = "https://api.digikey.com"

const (
	tokenPath    = "/v1/oauth2/token"
	keywordPath  = "/products/v4/search/keyword"
	detailsPath  = "/products/v4/search/%s/productdetails"
	tokenLeeway  = 60 * time.Second
	maxErrorBody = 512
)

// Client is the Digi-Key catalog client. It is safe for concurrent use;
// the access token is shared and refreshed under a mutex.
type Client struct {
	cfg     types.CatalogConfig
	retrier *httputil.Retrier
	log     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time

	now func() time.Time
}

// NewClient builds a catalog client. A nil http.Client gets one with
// cfg.Timeout. Missing credentials are reported per call as ErrNoCredentials.
func NewClient(cfg types.CatalogConfig, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.LocaleSite == "" {
		cfg.LocaleSite = "US"
	}
	if cfg.LocaleLanguage == "" {
		cfg.LocaleLanguage = "en"
	}
	if cfg.LocaleCurrency == "" {
		cfg.LocaleCurrency = "USD"
	}
	return &Client{
		cfg:     cfg,
		retrier: &httputil.Retrier{Client: httpClient, MaxRetries: cfg.MaxRetries, Log: log},
		log:     log,
		now:     time.Now,
	}
}

// Search runs one keyword or structured query against the keyword endpoint.
func (c *Client) Search(ctx context.Context, q Query) ([]types.Candidate, error) {
	body, err := json.Marshal(searchBody(q))
	if err != nil {
		return nil, fmt.Errorf("marshaling search body: %w", err)
	}

	var page dkKeywordResponse
	status, err := c.call(ctx, http.MethodPost, digikeyAPIBase+keywordPath, body, &page)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	c.log.Debug("catalog search",
		zap.String("tier", string(q.Tier)),
		zap.String("keywords", q.Keywords),
		zap.Int("filters", len(q.Filters)),
		zap.Int("products", len(page.Products)),
	)
	return normalizeProducts(page.Products), nil
}

// Lookup fetches a part's product details by manufacturer or Digi-Key
// part number.
func (c *Client) Lookup(ctx context.Context, partNumber string) (types.PartRecord, error) {
	pn := strings.TrimSpace(partNumber)
	if pn == "" {
		return types.PartRecord{}, ErrNotFound
	}

	var details dkDetailsResponse
	endpoint := digikeyAPIBase + fmt.Sprintf(detailsPath, url.PathEscape(pn))
	status, err := c.call(ctx, http.MethodGet, endpoint, nil, &details)
	if err != nil {
		return types.PartRecord{}, err
	}
	if status == http.StatusNotFound || details.Product == nil {
		return types.PartRecord{}, ErrNotFound
	}
	return details.Product.toRecord(), nil
}

// call performs an authenticated request and decodes a 200 body into out.
// 404 is returned as a status without error.
func (c *Client) call(ctx context.Context, method, endpoint string, body []byte, out any) (int, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return 0, err
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req, token)

	resp, err := c.retrier.Do(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("Digi-Key request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return resp.StatusCode, nil
	case http.StatusUnauthorized:
		// Force a fresh token on the next call.
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		fallthrough
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, fmt.Errorf("Digi-Key API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("parsing Digi-Key response: %w", err)
	}
	return resp.StatusCode, nil
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-DIGIKEY-Client-Id", c.cfg.ClientID)
	req.Header.Set("X-DIGIKEY-Locale-Site", c.cfg.LocaleSite)
	req.Header.Set("X-DIGIKEY-Locale-Language", c.cfg.LocaleLanguage)
	req.Header.Set("X-DIGIKEY-Locale-Currency", c.cfg.LocaleCurrency)
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached token or fetches a new one with the
// client-credentials grant.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if !c.cfg.HasCredentials() {
		return "", ErrNoCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, digikeyAPIBase+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.retrier.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("Digi-Key token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("Digi-Key token endpoint returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access_token")
	}

	ttl := time.Duration(tr.ExpiresIn) * time.Second
	if ttl > tokenLeeway {
		ttl -= tokenLeeway
	}
	c.token = tr.AccessToken
	c.tokenExpiry = c.now().Add(ttl)
	c.log.Debug("catalog token refreshed", zap.Duration("ttl", ttl))
	return c.token, nil
}

// Wire shapes for the keyword endpoint, one per query tier.

type dkFilter struct {
	ParameterID   string `json:"ParameterId,omitempty"`
	ParameterText string `json:"ParameterText,omitempty"`
	ValueID       string `json:"ValueId,omitempty"`
	ValueText     string `json:"ValueText,omitempty"`
	Value         string `json:"Value,omitempty"`
}

type dkFilters struct {
	ParameterFilters []dkFilter `json:"ParameterFilters"`
}

type dkSearchBody struct {
	Keywords              string     `json:"Keywords"`
	RecordCount           int        `json:"RecordCount"`
	Limit                 int        `json:"Limit"`
	Filters               *dkFilters `json:"Filters,omitempty"`
	ParameterValueFilters []dkFilter `json:"ParameterValueFilters,omitempty"`
}

// searchBody encodes q the way the keyword endpoint expects for its tier.
// The raw-value tier travels in ParameterValueFilters; the other structured
// tiers travel in Filters.ParameterFilters.
func searchBody(q Query) dkSearchBody {
	body := dkSearchBody{
		Keywords:    q.Keywords,
		RecordCount: q.Limit,
		Limit:       q.Limit,
	}
	if len(q.Filters) == 0 || q.Tier == TierKeyword {
		return body
	}
	filters := make([]dkFilter, 0, len(q.Filters))
	for _, f := range q.Filters {
		filters = append(filters, dkFilter(f))
	}
	if q.Tier == TierParamIDValue {
		body.ParameterValueFilters = filters
	} else {
		body.Filters = &dkFilters{ParameterFilters: filters}
	}
	return body
}
