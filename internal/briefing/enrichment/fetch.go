// Package enrichment fetches the full article behind a selected candidate
// and produces a substantial summary, since RSS teasers alone are too thin
// for a briefing item.
package enrichment

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// safeSchemes are the only URL schemes fetch will follow.
var safeSchemes = map[string]bool{"http": true, "https": true}

// blockedHosts never get fetched even if they resolve to a public address.
var blockedHosts = map[string]bool{
	"localhost":       true,
	"metadata.google.internal": true,
}

// isPrivateOrLoopback reports whether ip must not be fetched, guarding
// against SSRF via a candidate URL that resolves to internal infrastructure
// (loopback, link-local, or RFC1918 ranges).
func isPrivateOrLoopback(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

// DomainThrottle enforces a minimum interval between fetches to the same
// host, so enriching several selected candidates from the same outlet
// doesn't hammer it with concurrent requests.
type DomainThrottle struct {
	mu           sync.Mutex
	lastAccess   map[string]time.Time
	minInterval  time.Duration
	maxTracked   int
}

// NewDomainThrottle builds a throttle with the given minimum per-host
// interval.
func NewDomainThrottle(minInterval time.Duration) *DomainThrottle {
	return &DomainThrottle{lastAccess: make(map[string]time.Time), minInterval: minInterval, maxTracked: 500}
}

// Wait blocks until it is safe to fetch host again.
func (d *DomainThrottle) Wait(ctx context.Context, host string) error {
	d.mu.Lock()
	if _, tracked := d.lastAccess[host]; !tracked && len(d.lastAccess) >= d.maxTracked {
		oldestHost, oldest := "", time.Time{}
		for h, t := range d.lastAccess {
			if oldestHost == "" || t.Before(oldest) {
				oldestHost, oldest = h, t
			}
		}
		delete(d.lastAccess, oldestHost)
	}
	last, ok := d.lastAccess[host]
	now := time.Now()
	wait := time.Duration(0)
	if ok {
		elapsed := now.Sub(last)
		if elapsed < d.minInterval {
			wait = d.minInterval - elapsed
		}
	}
	d.lastAccess[host] = now.Add(wait)
	d.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fetcher retrieves article HTML with an SSRF-safe dialer and per-domain
// throttling.
type Fetcher struct {
	client   *http.Client
	throttle *DomainThrottle
}

// SafeDialContext returns a DialContext func that resolves the target host
// itself and refuses to connect to any loopback, link-local, or private
// address the resolution yields, closing the classic
// SSRF-via-redirect-or-DNS-rebind hole a naive net/http client would leave
// open. Shared by the article fetcher and the webhook delivery client,
// since both dial URLs this service does not control.
func SafeDialContext(timeout time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: timeout}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
		if err != nil {
			return nil, err
		}
		for _, ip := range ips {
			if isPrivateOrLoopback(ip) {
				return nil, fmt.Errorf("refusing to dial private address %s", ip)
			}
		}
		return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].String(), port))
	}
}

// NewFetcher builds a Fetcher whose HTTP client refuses to dial private or
// loopback addresses, closing the classic SSRF-via-redirect-or-DNS-rebind
// hole a naive net/http.Get would leave open.
func NewFetcher(timeout time.Duration, throttle *DomainThrottle) *Fetcher {
	transport := &http.Transport{DialContext: SafeDialContext(timeout)}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout, Transport: transport},
		throttle: throttle,
	}
}

// Fetch retrieves rawURL's body as a string, returning an empty string for
// any disallowed scheme, blocked host, or transport failure rather than an
// error: an unreachable article must never fail the whole briefing.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || !safeSchemes[strings.ToLower(u.Scheme)] {
		return ""
	}
	host := u.Hostname()
	if blockedHosts[strings.ToLower(host)] {
		return ""
	}

	if err := f.throttle.Wait(ctx, host); err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; BriefingBot/1.0)")
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "html") && !strings.Contains(contentType, "text") {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return ""
	}
	return string(body)
}
