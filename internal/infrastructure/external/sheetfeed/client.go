package sheetfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/crickarena/fantasy-cricket/internal/domain/rawdata"
	"github.com/crickarena/fantasy-cricket/internal/platform/logging"
	"github.com/crickarena/fantasy-cricket/internal/platform/resilience"
	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

const (
	defaultBaseURL = "https://docs.google.com/spreadsheets"
	payloadSource  = "sheetfeed"

	performanceTab = "Player_Performance"
	capPointsTab   = "Cap_Points"

	maxSheetBodySize = 8 << 20
)

var errSheetTransient = crerr.New("sheet feed transient failure")

type ClientConfig struct {
	BaseURL        string
	SheetID        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the published tournament sheet through the CSV export
// endpoint, one tab per request. Column positions are resolved from the
// header row, so the sheet can reorder or append columns freely.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	sheetID        string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	now            func() time.Time
}

var _ usecase.SheetSource = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxSheetBodySize,
		},
		baseURL:        baseURL,
		sheetID:        strings.TrimSpace(cfg.SheetID),
		timeout:        timeout,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
}

func (c *Client) ListPerformanceRows(ctx context.Context, week int) ([]usecase.SheetPerformanceRow, rawdata.Payload, error) {
	if week <= 0 {
		return nil, rawdata.Payload{}, fmt.Errorf("week must be greater than zero, got %d", week)
	}

	body, err := c.fetchTab(ctx, performanceTab)
	if err != nil {
		return nil, rawdata.Payload{}, fmt.Errorf("fetch tab %s: %w", performanceTab, err)
	}
	payload := c.buildPayload(performanceTab, week, body)

	table, err := parseCSVTable(body)
	if err != nil {
		return nil, rawdata.Payload{}, fmt.Errorf("parse tab %s: %w", performanceTab, err)
	}

	rows, err := mapPerformanceRows(table, week)
	if err != nil {
		return nil, rawdata.Payload{}, fmt.Errorf("map tab %s: %w", performanceTab, err)
	}
	return rows, payload, nil
}

func (c *Client) FetchCapHolders(ctx context.Context, week int) (usecase.SheetCapHolders, rawdata.Payload, error) {
	if week <= 0 {
		return usecase.SheetCapHolders{}, rawdata.Payload{}, fmt.Errorf("week must be greater than zero, got %d", week)
	}

	body, err := c.fetchTab(ctx, capPointsTab)
	if err != nil {
		return usecase.SheetCapHolders{}, rawdata.Payload{}, fmt.Errorf("fetch tab %s: %w", capPointsTab, err)
	}
	payload := c.buildPayload(capPointsTab, week, body)

	table, err := parseCSVTable(body)
	if err != nil {
		return usecase.SheetCapHolders{}, rawdata.Payload{}, fmt.Errorf("parse tab %s: %w", capPointsTab, err)
	}

	holders, err := mapCapHolders(table, week)
	if err != nil {
		return usecase.SheetCapHolders{}, rawdata.Payload{}, fmt.Errorf("map tab %s: %w", capPointsTab, err)
	}
	return holders, payload, nil
}

func (c *Client) fetchTab(ctx context.Context, tab string) ([]byte, error) {
	if c.sheetID == "" {
		return nil, fmt.Errorf("%w: sheet id is not configured", usecase.ErrDependencyUnavailable)
	}
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sheet feed circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: sheet feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + "/d/" + url.PathEscape(c.sheetID) + "/gviz/tq?tqx=out%3Acsv&sheet=" + url.QueryEscape(tab)

	body, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if err != nil && stderrors.Is(err, errSheetTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return body, err
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := c.doOnce(ctx, fullURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !stderrors.Is(err, errSheetTransient) {
			return nil, err
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("sheet request failed")
	}
	c.logger.WarnContext(ctx, "sheet feed request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "text/csv")

	deadline := c.now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: send request: %v", errSheetTransient, err)
	}

	status := resp.StatusCode()
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := resp.BodyWriteTo(buf); err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errSheetTransient, err)
	}

	if status < 200 || status >= 300 {
		err := fmt.Errorf("sheet status=%d body=%s", status, abbreviateBody(buf.B))
		if status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError {
			err = fmt.Errorf("%w: %v", errSheetTransient, err)
		}
		return nil, err
	}

	return append([]byte(nil), buf.B...), nil
}

func (c *Client) buildPayload(tab string, week int, body []byte) rawdata.Payload {
	return rawdata.Payload{
		Source:    payloadSource,
		Ref:       fmt.Sprintf("%s/%s?week=%d", c.sheetID, tab, week),
		Body:      body,
		FetchedAt: c.now().UTC(),
	}
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
