// Package overleaf is a thin SDK for the Overleaf web interface. There is
// no public API: the endpoints below are the same ones the browser uses,
// authenticated by session cookies and guarded by a CSRF token scraped
// from the served pages.
package overleaf

import (
	"fmt"
	"net/url"

	"github.com/imroc/req/v3"
)

const (
	loginPath    = "/login"
	projectsPath = "/project"
)

// Overleaf serves the login flow to browsers only, so the client
// advertises a browser user agent like the web UI does.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// SDK is the client for one Overleaf server. The underlying HTTP client
// carries the session cookie jar shared by all APIs.
type SDK struct {
	client  *req.Client
	baseURL *url.URL
	Auth    *AuthAPI
	Project *ProjectAPI
}

// New creates a new SDK client for the given server.
func New(serverURL string) (*SDK, error) {
	if serverURL == "" {
		return nil, ErrNoServerURL
	}

	baseURL, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("sdk: parse server url %q: %w", serverURL, err)
	}

	client := req.C().
		SetBaseURL(serverURL).
		SetUserAgent(userAgent).
		SetCommonHeader("Accept-Language", "en-US,en;q=0.9")

	return &SDK{
		client:  client,
		baseURL: baseURL,
		Auth:    newAuthAPI(client),
		Project: newProjectAPI(client),
	}, nil
}
