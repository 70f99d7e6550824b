package introspect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/user"
	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

// Client verifies bearer tokens against the account provider's introspection
// endpoint. Verified principals are cached for a short TTL so every request
// does not round-trip to the provider.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	logger        *slog.Logger
	cache         *principalCache
}

func NewClient(httpClient *http.Client, baseURL, introspectPath string, cacheTTL time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(baseURL, introspectPath),
		logger:        logger,
		cache:         newPrincipalCache(cacheTTL, 2048),
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	if principal, ok := c.cache.Get(token); ok {
		return principal, nil
	}

	encoded, err := json.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("request token introspection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("read introspect response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "token introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("token introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	principal := user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
		Name:   decoded.Name,
	}
	c.cache.Set(token, principal)
	return principal, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}

type cacheEntry struct {
	principal user.Principal
	expiresAt time.Time
}

type principalCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
}

func newPrincipalCache(ttl time.Duration, maxEntries int) *principalCache {
	return &principalCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (c *principalCache) Get(key string) (user.Principal, bool) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return user.Principal{}, false
	}
	if !entry.expiresAt.After(now) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return user.Principal{}, false
	}
	return entry.principal, true
}

func (c *principalCache) Set(key string, principal user.Principal) {
	if c.ttl <= 0 {
		return
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		for k, entry := range c.entries {
			if !entry.expiresAt.After(now) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= c.maxEntries {
			for k := range c.entries {
				delete(c.entries, k)
				break
			}
		}
	}

	c.entries[key] = cacheEntry{principal: principal, expiresAt: now.Add(c.ttl)}
}
