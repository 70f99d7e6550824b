package cricketdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/crickarena/fantasy-cricket/internal/domain/rawdata"
	"github.com/crickarena/fantasy-cricket/internal/platform/logging"
	"github.com/crickarena/fantasy-cricket/internal/platform/resilience"
	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

const (
	defaultBaseURL           = "https://api.cricapi.com/v1"
	defaultRequestsPerMinute = 60
	payloadSource            = "cricketdata"
)

var apiKeyParamRegex = regexp.MustCompile(`apikey=[^&\s"']+`)
var errCricketDataTransient = crerr.New("cricketdata transient failure")

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client talks to the cricket stats API. Requests are throttled through a
// token bucket sized to the provider's per-minute quota, deduplicated via
// singleflight and guarded by a circuit breaker.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	limiter        *rate.Limiter
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	now            func() time.Time
}

var _ usecase.MatchDataProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		limiter:        rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
}

func (c *Client) FetchSeriesMatches(ctx context.Context, seriesRef string) ([]usecase.ExternalMatch, []rawdata.Payload, error) {
	seriesRef = strings.TrimSpace(seriesRef)
	if seriesRef == "" {
		return nil, nil, fmt.Errorf("series ref is required")
	}

	var envelope seriesInfoEnvelope
	raw, err := c.doJSON(ctx, "/series_info", map[string]string{"id": seriesRef}, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch series info series_ref=%s: %w", seriesRef, err)
	}
	payloads := []rawdata.Payload{c.buildPayload("/series_info", seriesRef, raw)}

	matches := make([]usecase.ExternalMatch, 0, len(envelope.Data.MatchList))
	for _, item := range envelope.Data.MatchList {
		ref := strings.TrimSpace(item.ID)
		if ref == "" {
			continue
		}
		matches = append(matches, usecase.ExternalMatch{
			Ref:      ref,
			Name:     strings.TrimSpace(item.Name),
			Status:   strings.TrimSpace(item.Status),
			Venue:    strings.TrimSpace(item.Venue),
			Teams:    trimAll(item.Teams),
			StartsAt: parseProviderDateTime(item.DateTimeGMT),
			Ended:    item.MatchEnded,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		left, right := matches[i], matches[j]
		switch {
		case left.StartsAt == nil && right.StartsAt == nil:
			return left.Ref < right.Ref
		case left.StartsAt == nil:
			return false
		case right.StartsAt == nil:
			return true
		case !left.StartsAt.Equal(*right.StartsAt):
			return left.StartsAt.Before(*right.StartsAt)
		default:
			return left.Ref < right.Ref
		}
	})

	return matches, payloads, nil
}

func (c *Client) FetchScorecard(ctx context.Context, matchRef string) (usecase.ExternalScorecard, rawdata.Payload, error) {
	matchRef = strings.TrimSpace(matchRef)
	if matchRef == "" {
		return usecase.ExternalScorecard{}, rawdata.Payload{}, fmt.Errorf("match ref is required")
	}

	var envelope scorecardEnvelope
	raw, err := c.doJSON(ctx, "/match_scorecard", map[string]string{"id": matchRef}, &envelope)
	if err != nil {
		return usecase.ExternalScorecard{}, rawdata.Payload{}, fmt.Errorf("fetch scorecard match_ref=%s: %w", matchRef, err)
	}

	card := usecase.ExternalScorecard{
		MatchRef: matchRef,
		Name:     strings.TrimSpace(envelope.Data.Name),
		Status:   strings.TrimSpace(envelope.Data.Status),
		Lines:    collapseScorecard(envelope.Data.Scorecard),
	}
	return card, c.buildPayload("/match_scorecard", matchRef, raw), nil
}

// collapseScorecard merges per-innings batting, bowling and fielding entries
// into one line per player name.
func collapseScorecard(innings []inningsPayload) []usecase.ExternalPlayerLine {
	byName := make(map[string]*usecase.ExternalPlayerLine, 22)
	order := make([]string, 0, 22)

	lineFor := func(name string) *usecase.ExternalPlayerLine {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil
		}
		key := strings.ToLower(name)
		if line, ok := byName[key]; ok {
			return line
		}
		line := &usecase.ExternalPlayerLine{Name: name}
		byName[key] = line
		order = append(order, key)
		return line
	}

	for _, inning := range innings {
		for _, entry := range inning.Batting {
			line := lineFor(entry.Batsman.Name)
			if line == nil {
				continue
			}
			line.Runs += entry.Runs
			line.BallsFaced += entry.Balls
			line.Fours += entry.Fours
			line.Sixes += entry.Sixes
			line.Batted = true
		}
		for _, entry := range inning.Bowling {
			line := lineFor(entry.Bowler.Name)
			if line == nil {
				continue
			}
			line.Wickets += entry.Wickets
			line.OversBowled += entry.Overs
			line.RunsConceded += entry.Runs
			line.Bowled = true
		}
		for _, entry := range inning.Catching {
			line := lineFor(entry.Catcher.Name)
			if line == nil {
				continue
			}
			line.Catches += entry.Catches
			line.Stumpings += entry.Stumped
		}
	}

	out := make([]usecase.ExternalPlayerLine, 0, len(order))
	for _, key := range order {
		out = append(out, *byName[key])
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "cricketdata circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: cricket data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("apikey", c.apiKey)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errCricketDataTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errCricketDataTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errCricketDataTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errCricketDataTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
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
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "cricketdata request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) buildPayload(path, ref string, raw []byte) rawdata.Payload {
	return rawdata.Payload{
		Source:    payloadSource,
		Ref:       strings.TrimPrefix(path, "/") + "/" + ref,
		Body:      append([]byte(nil), raw...),
		FetchedAt: c.now().UTC(),
	}
}

func parseProviderDateTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "apikey=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("apikey") {
		query.Set("apikey", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
