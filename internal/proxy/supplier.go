package proxy

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const maxParallelChecks = 50

// ProxySupplier hands out storefront proxies in round-robin order.
type ProxySupplier interface {
	Get() string
}

type proxySupplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewProxySupplier keeps only the proxies that can reach checkURL. The
// configured order is preserved for the survivors.
func NewProxySupplier(ctx context.Context, proxies []string, checkURL string) (ProxySupplier, error) {
	if len(proxies) == 0 {
		return &proxySupplier{proxies: []string{}}, nil
	}

	log.Infof("🔄 Checking %d storefront proxies...", len(proxies))

	alive := make([]bool, len(proxies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelChecks)

	for i, proxyURL := range proxies {
		g.Go(func() error {
			alive[i] = canReach(gctx, proxyURL, checkURL)
			if alive[i] {
				log.Debugf("✅ Proxy %s reached the storefront", proxyURL)
			} else {
				log.Infof("❌ Proxy %s cannot reach the storefront, skipping", proxyURL)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	working := make([]string, 0, len(proxies))
	for i, ok := range alive {
		if ok {
			working = append(working, proxies[i])
		}
	}

	log.Infof("✅ %d of %d proxies usable for import", len(working), len(proxies))

	return &proxySupplier{proxies: working}, nil
}

// Get returns "" when no proxy is usable.
func (p *proxySupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	next := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)
	return next
}

func canReach(ctx context.Context, proxyURL, checkURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	resp, err := client.R().
		SetContext(ctx).
		Get(checkURL)
	if err != nil {
		log.Debugf("Proxy check failed for %s: %v", proxyURL, err)
		return false
	}
	if resp.IsError() {
		log.Debugf("Proxy check failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}
	return true
}
