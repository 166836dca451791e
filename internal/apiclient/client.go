package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/leagueos/internal/config"
	"github.com/AdamBeresnev/leagueos/internal/constants"
	"github.com/AdamBeresnev/leagueos/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// Client talks to the league REST API. Every call carries the caller's
// bearer token; club scoped calls also carry club_id.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) *Client {
	timeout := cfg.API.Timeout
	if timeout <= 0 {
		timeout = constants.ExternalAPITimeout
	}
	burst := cfg.API.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
		timeout: timeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.API.RateLimit), burst),
		metrics: m,
		logger:  logger.With().Str("component", "apiclient").Logger(),
	}
}

type call struct {
	method string
	path   string
	token  string
	clubID int64
	query  map[string]string
	body   any
}

func (c *call) set(key string, value string) {
	if c.query == nil {
		c.query = make(map[string]string)
	}
	c.query[key] = value
}

func (c *call) setID(key string, id int64) {
	if id != 0 {
		c.set(key, strconv.FormatInt(id, 10))
	}
}

func doRequest[T any](ctx context.Context, client *Client, c call) (T, error) {
	var result T

	if err := client.limiter.Wait(ctx); err != nil {
		return result, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	method := c.method
	if method == "" {
		method = fasthttp.MethodGet
	}

	req.SetRequestURI(client.baseURL + c.path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	args := req.URI().QueryArgs()
	if c.clubID != 0 {
		args.Set("club_id", strconv.FormatInt(c.clubID, 10))
	}
	for k, v := range c.query {
		args.Set(k, v)
	}

	if c.body != nil {
		payload, err := json.Marshal(c.body)
		if err != nil {
			return result, fmt.Errorf("failed to encode request body: %w", err)
		}
		req.SetBody(payload)
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = client.client.DoDeadline(req, resp, deadline)
	} else {
		err = client.client.DoTimeout(req, resp, client.timeout)
	}
	status := resp.StatusCode()
	client.observe(method, status, err, time.Since(start))

	if err != nil {
		client.logger.Warn().Err(err).Str("method", method).Str("path", c.path).Msg("league api request failed")
		return result, fmt.Errorf("failed to call %s %s: %w", method, c.path, err)
	}

	if status < 200 || status >= 300 {
		apiErr := decodeError(status, resp.Body())
		client.logger.Debug().
			Int("status", status).
			Str("code", apiErr.Code).
			Str("path", c.path).
			Msg("league api rejected request")
		return result, apiErr
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return result, fmt.Errorf("failed to decode %s response: %w", c.path, err)
	}
	return result, nil
}

func (c *Client) observe(method string, status int, err error, d time.Duration) {
	if c.metrics == nil {
		return
	}
	label := strconv.Itoa(status)
	if err != nil {
		label = "error"
	}
	c.metrics.UpstreamRequests.WithLabelValues(method, label).Observe(d.Seconds())
}
