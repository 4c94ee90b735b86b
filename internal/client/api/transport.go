package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/what-to-eat/client/internal/client/settings"
	"github.com/what-to-eat/client/internal/logging"
)

// placeholderBaseURL is the address requests are built against. The host
// rewrite transport replaces it with the store's current server address on
// every call, so the address can change at runtime without rebuilding the
// client.
const placeholderBaseURL = "http://placeholder.local"

const requestIDHeader = "X-Request-Id"

// newTransport assembles the RoundTripper chain: request-ID stamping, then
// bearer injection, then host rewrite. Order matters only in that the
// rewrite must see the final request; the other two are order-independent.
func newTransport(store settings.Store, log logging.Logger) http.RoundTripper {
	var rt http.RoundTripper = http.DefaultTransport
	rt = &hostRewriteTransport{store: store, log: log, next: rt}
	rt = &authTransport{store: store, next: rt}
	rt = &requestIDTransport{next: rt}
	return rt
}

type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(requestIDHeader, uuid.NewString())
	return t.next.RoundTrip(req)
}

// authTransport attaches the stored token as a bearer credential. Requests
// made while no token is stored (register, login, guest, health) go out
// without the header.
type authTransport struct {
	store settings.Store
	next  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, present, err := t.store.Get(req.Context(), settings.KeyToken)
	if err == nil && present && token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.next.RoundTrip(req)
}

// hostRewriteTransport replaces the request's scheme/host with the store's
// current server address. The address is read on every call, not cached,
// so a settings change takes effect on the next request.
type hostRewriteTransport struct {
	store settings.Store
	log   logging.Logger
	next  http.RoundTripper
}

func (t *hostRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	host, err := t.store.ServerHost(req.Context())
	if err != nil {
		t.log.Warn(req.Context(), "server host lookup failed, using request as-is", "err", err)
		return t.next.RoundTrip(req)
	}

	base, err := url.Parse(host)
	if err != nil || base.Host == "" {
		t.log.Warn(req.Context(), "stored server address is not a valid url", "host", host)
		return t.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.URL.Scheme = base.Scheme
	req.URL.Host = base.Host
	req.Host = ""
	return t.next.RoundTrip(req)
}

// ProbeHealth checks liveness of the given base address directly, bypassing
// the dynamic host rewrite, with its own timeout. Used to validate a
// candidate server address before it is committed to the settings store.
func ProbeHealth(ctx context.Context, baseURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: timeout}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinPath(baseURL, "/health"), nil)
	if err != nil {
		return &TransportError{Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return classifyTransportErr(err)
	}
	defer resp.Body.Close()

	var hr healthResponse
	if err := decodeBody(resp, &hr); err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || hr.Status != "ok" {
		return &AppError{Message: "Server responded abnormally, please check its status"}
	}
	return nil
}

func joinPath(base, path string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + path
}
