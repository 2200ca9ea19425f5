package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/catnav/internal/config"
	"storefront/catnav/internal/domain"
	"storefront/catnav/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// ErrCircuitOpen is returned while requests are disabled after a quota error.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type StorefrontClient interface {
	GetMenuIndex(ctx context.Context) ([]domain.RailEntry, error)
	GetCategory(ctx context.Context, entry domain.RailEntry) (*domain.Category, error)
}

type storefrontClient struct {
	rl            ratelimit.Limiter
	config        config.StorefrontConfig
	baseURL       string
	httpClient    *resty.Client
	parser        *menuParser
	proxySupplier proxy.ProxySupplier

	// Circuit breaker for quota exceeded
	circuitBreakerMutex sync.RWMutex
	quotaExceededUntil  time.Time
	circuitBreakerDelay time.Duration
}

func NewStorefrontClient(cfg config.StorefrontConfig, proxySupplier proxy.ProxySupplier) StorefrontClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("User-Agent", "catnav-importer/1.0").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetTLSClientConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
		})

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rps := cfg.MaxRequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &storefrontClient{
		rl:                  ratelimit.New(rps),
		config:              cfg,
		baseURL:             baseURL,
		httpClient:          client,
		parser:              newMenuParser(baseURL),
		proxySupplier:       proxySupplier,
		circuitBreakerDelay: 30 * time.Minute,
	}
}

func (c *storefrontClient) GetMenuIndex(ctx context.Context) ([]domain.RailEntry, error) {
	url := c.baseURL + c.config.MenuPath

	html, err := c.fetchHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML for menu index: %w", err)
	}

	entries, err := c.parser.ParseMenuIndex(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse menu index: %w", err)
	}

	log.Debugf("Fetched menu index with %d rail entries", len(entries))
	return entries, nil
}

func (c *storefrontClient) GetCategory(ctx context.Context, entry domain.RailEntry) (*domain.Category, error) {
	html, err := c.fetchHTML(ctx, entry.PageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML for category %s: %w", entry.Name, err)
	}

	category, err := c.parser.ParseCategoryPage(html, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category %s: %w", entry.Name, err)
	}

	log.Debugf("Fetched category %s with %d subcategories", entry.Name, len(category.Subcategories))
	return category, nil
}

func (c *storefrontClient) isCircuitBreakerOpen() bool {
	c.circuitBreakerMutex.RLock()
	now := time.Now()
	wasOpen := now.Before(c.quotaExceededUntil)
	wasTriggered := !c.quotaExceededUntil.IsZero()
	c.circuitBreakerMutex.RUnlock()

	if !wasOpen && wasTriggered {
		c.circuitBreakerMutex.Lock()
		// Double-check after acquiring write lock
		if !c.quotaExceededUntil.IsZero() && now.After(c.quotaExceededUntil) {
			c.quotaExceededUntil = time.Time{}
			log.Infof("✅ Circuit breaker automatically re-enabled - requests are now allowed")
		}
		c.circuitBreakerMutex.Unlock()
	}

	return wasOpen
}

func (c *storefrontClient) triggerCircuitBreaker() {
	c.circuitBreakerMutex.Lock()
	defer c.circuitBreakerMutex.Unlock()

	c.quotaExceededUntil = time.Now().Add(c.circuitBreakerDelay)
	log.Warnf("🚫 Circuit breaker activated! All requests disabled until %v",
		c.quotaExceededUntil.Format("15:04:05"))
}

func (c *storefrontClient) getRemainingCircuitBreakerTime() time.Duration {
	c.circuitBreakerMutex.RLock()
	defer c.circuitBreakerMutex.RUnlock()

	remaining := time.Until(c.quotaExceededUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func isQuotaPage(html string) bool {
	return strings.Contains(html, "Quota Exceeded")
}

func (c *storefrontClient) fetchHTML(ctx context.Context, url string) (string, error) {
	if c.isCircuitBreakerOpen() {
		remaining := c.getRemainingCircuitBreakerTime()
		log.Debugf("🚫 Request blocked by circuit breaker. Remaining time: %v", remaining.Round(time.Second))
		return "", fmt.Errorf("%w: requests disabled for %v more", ErrCircuitOpen, remaining.Round(time.Second))
	}

	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	html := resp.String()
	if !isQuotaPage(html) {
		return html, nil
	}

	log.Warnf("🚫 Rate limit exceeded for URL: %s", url)

	if c.proxySupplier != nil {
		if newProxy := c.proxySupplier.Get(); newProxy != "" {
			log.Infof("🔄 Switching to new proxy: %s", newProxy)
			c.httpClient.SetProxy(newProxy)

			retryResp, retryErr := c.httpClient.R().
				SetContext(ctx).
				Get(url)

			if retryErr == nil && !retryResp.IsError() && !isQuotaPage(retryResp.String()) {
				log.Infof("✅ Retry successful with new proxy")
				return retryResp.String(), nil
			}
		}
	}

	c.triggerCircuitBreaker()
	return "", fmt.Errorf("%w: quota exceeded", ErrCircuitOpen)
}
