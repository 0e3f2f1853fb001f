// Package fmp provides a client for the Financial Modeling Prep API
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/interfaces"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

const (
	DefaultBaseURL   = "https://financialmodelingprep.com/api/v3"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the FMPClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	retry      common.RetryPolicy
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetryPolicy overrides the retry policy
func WithRetryPolicy(policy common.RetryPolicy) ClientOption {
	return func(c *Client) {
		c.retry = policy
	}
}

// NewClient creates a new FMP client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		retry:   common.DefaultRetryPolicy(IsPermanent),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FMP API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsPermanent reports whether err is an authorization failure that retrying
// cannot fix. The retry policy skips the ticker immediately on these.
func IsPermanent(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// get performs a rate-limited GET request with retries
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	return c.retry.Do(ctx, func(ctx context.Context) error {
		return c.getOnce(ctx, path, params, result)
	})
}

func (c *Client) getOnce(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("FMP API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type profileResponse struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
	Sector      string `json:"sector"`
	Description string `json:"description"`
}

// GetProfile retrieves the company profile for a ticker. FMP returns an
// empty array for unknown symbols, which maps to models.ErrNotFound.
func (c *Client) GetProfile(ctx context.Context, ticker string) (*models.TickerProfile, error) {
	path := fmt.Sprintf("/profile/%s", url.PathEscape(ticker))

	var profiles []profileResponse
	if err := c.get(ctx, path, nil, &profiles); err != nil {
		return nil, err
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile for %s: %w", ticker, models.ErrNotFound)
	}

	p := profiles[0]
	return &models.TickerProfile{
		Ticker:      p.Symbol,
		Name:        p.CompanyName,
		Sector:      p.Sector,
		Description: p.Description,
	}, nil
}

type earningsCalendarResponse struct {
	Symbol           string   `json:"symbol"`
	Date             string   `json:"date"`
	EPSEstimated     *float64 `json:"epsEstimated"`
	RevenueEstimated *float64 `json:"revenueEstimated"`
}

// GetEarningsCalendar retrieves earnings events between from and to
func (c *Client) GetEarningsCalendar(ctx context.Context, from, to time.Time) ([]models.EarningsEvent, error) {
	params := url.Values{}
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))

	var entries []earningsCalendarResponse
	if err := c.get(ctx, "/earning_calendar", params, &entries); err != nil {
		return nil, err
	}

	events := make([]models.EarningsEvent, len(entries))
	for i, e := range entries {
		events[i] = models.EarningsEvent{
			Ticker:          e.Symbol,
			Date:            e.Date,
			EPSEstimate:     e.EPSEstimated,
			RevenueEstimate: e.RevenueEstimated,
		}
	}

	return events, nil
}

type analystEstimateResponse struct {
	Date            string      `json:"date"`
	EstimatedEpsAvg flexFloat64 `json:"estimatedEpsAvg"`
}

// GetAnalystEstimates retrieves quarterly EPS estimates, nearest first
func (c *Client) GetAnalystEstimates(ctx context.Context, ticker string, limit int) ([]models.EPSEstimate, error) {
	path := fmt.Sprintf("/analyst-estimates/%s", url.PathEscape(ticker))

	params := url.Values{}
	params.Set("period", "quarter")
	params.Set("limit", strconv.Itoa(limit))

	var entries []analystEstimateResponse
	if err := c.get(ctx, path, params, &entries); err != nil {
		return nil, err
	}

	estimates := make([]models.EPSEstimate, len(entries))
	for i, e := range entries {
		estimates[i] = models.EPSEstimate{
			Date:            e.Date,
			EstimatedEPSAvg: float64(e.EstimatedEpsAvg),
		}
	}

	return estimates, nil
}

type cashFlowResponse struct {
	OperatingCashFlow        flexFloat64 `json:"operatingCashFlow"`
	CapitalExpenditure       flexFloat64 `json:"capitalExpenditure"`
	WeightedAverageShsOutDil flexFloat64 `json:"weightedAverageShsOutDil"`
}

// GetCashFlowStatement retrieves the latest annual cash flow statement
func (c *Client) GetCashFlowStatement(ctx context.Context, ticker string) (*models.CashFlowStatement, error) {
	path := fmt.Sprintf("/cash-flow-statement/%s", url.PathEscape(ticker))

	params := url.Values{}
	params.Set("period", "annual")
	params.Set("limit", "1")

	var statements []cashFlowResponse
	if err := c.get(ctx, path, params, &statements); err != nil {
		return nil, err
	}

	if len(statements) == 0 {
		return nil, fmt.Errorf("cash flow statement for %s: %w", ticker, models.ErrNotFound)
	}

	s := statements[0]
	return &models.CashFlowStatement{
		OperatingCashFlow:  float64(s.OperatingCashFlow),
		CapitalExpenditure: float64(s.CapitalExpenditure),
		DilutedShares:      float64(s.WeightedAverageShsOutDil),
	}, nil
}

type newsResponse struct {
	Title         string `json:"title"`
	Text          string `json:"text"`
	URL           string `json:"url"`
	PublishedDate string `json:"publishedDate"`
}

// GetNews retrieves recent news for a ticker
func (c *Client) GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	params := url.Values{}
	params.Set("tickers", ticker)
	params.Set("limit", strconv.Itoa(limit))

	var entries []newsResponse
	if err := c.get(ctx, "/stock_news", params, &entries); err != nil {
		return nil, err
	}

	news := make([]models.NewsItem, len(entries))
	for i, item := range entries {
		publishedAt, _ := time.Parse("2006-01-02 15:04:05", item.PublishedDate)
		news[i] = models.NewsItem{
			Title:       item.Title,
			Text:        item.Text,
			URL:         item.URL,
			PublishedAt: publishedAt,
		}
	}

	return news, nil
}

// Ensure Client implements FMPClient
var _ interfaces.FMPClient = (*Client)(nil)
