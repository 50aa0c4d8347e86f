package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"param-server/src/helpers"
	"param-server/src/interfaces"
	"param-server/src/logger"
	"param-server/src/models"
)

// maxBodyBytes caps an upstream response; a 10y daily chart is well under 2MB.
const maxBodyBytes = 16 << 20

// StatusError is returned for non-200 upstream responses. Body holds the
// (possibly empty) payload so callers can read vendor error details.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %d", e.StatusCode)
}

// -----------------------------------------------------------------------------

type AsyncNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger

	mu     sync.Mutex
	client *http.Client
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(cfg.Network.Proxies, cfg.Network.UserAgent),
		Logger:       log,
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) currentClient() *http.Client {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return nm.client
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	nm.mu.Lock()
	nm.client = nm.createClient()
	nm.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Get performs a GET request. Transport failures, 429/403 and 5xx are retried
// up to network.retries times with quadratic backoff; any other status is
// returned at once as a *StatusError.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqUrl.RawQuery = q.Encode()
	finalUrl := reqUrl.String()

	maxRetries := nm.Config.Network.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(i*i) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			nm.rotateProxy()
		}

		body, retry, err := nm.do(ctx, finalUrl)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			return nil, err
		}
		nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
	}

	if maxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) do(ctx context.Context, finalUrl string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalUrl, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := nm.currentClient().Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusForbidden:
		nm.Logger.Info("Request blocked (%d). Rotating proxy.", resp.StatusCode)
		return nil, true, &StatusError{StatusCode: resp.StatusCode, Body: body}
	case resp.StatusCode >= 500:
		return nil, true, &StatusError{StatusCode: resp.StatusCode, Body: body}
	default:
		return nil, false, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}
}
