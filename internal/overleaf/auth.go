package overleaf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/imroc/req/v3"
)

// AuthAPI implements the browser login flow: fetch the login page, lift
// the anti-forgery token out of it, post the credentials.
type AuthAPI struct {
	client *req.Client
}

func newAuthAPI(client *req.Client) *AuthAPI {
	return &AuthAPI{
		client: client,
	}
}

// Login authenticates the session. The login post alone is not trusted:
// Overleaf re-renders the login form with a 200 on bad credentials, so
// the session is verified with an authenticated probe afterwards.
func (a *AuthAPI) Login(ctx context.Context, email, password string) error {
	token, err := a.loginPageToken(ctx)
	if err != nil {
		return err
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"email":    email,
			"password": password,
			"_csrf":    token,
		}).
		Post(loginPath)

	if err != nil {
		return fmt.Errorf("%w: login: %w", ErrNetwork, err)
	}

	if resp.IsErrorState() {
		return fmt.Errorf("%w: login rejected with status %s", ErrAuth, resp.Status)
	}

	return a.verifySession(ctx)
}

// loginPageToken fetches the login page and extracts the hidden `_csrf`
// form value. Without it the login post is never attempted.
func (a *AuthAPI) loginPageToken(ctx context.Context) (string, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		Get(loginPath)

	if err != nil {
		return "", fmt.Errorf("%w: fetch login page: %w", ErrNetwork, err)
	}

	if resp.IsErrorState() {
		return "", fmt.Errorf("%w: login page returned status %s", ErrNetwork, resp.Status)
	}

	return extractCSRFInput(bytes.NewReader(resp.Bytes()))
}

// verifySession requests the project dashboard and checks the server did
// not bounce the session back to the login form.
func (a *AuthAPI) verifySession(ctx context.Context) error {
	resp, err := a.client.R().
		SetContext(ctx).
		Get(projectsPath)

	if err != nil {
		return fmt.Errorf("%w: session probe: %w", ErrNetwork, err)
	}

	if resp.IsErrorState() {
		return fmt.Errorf("%w: session probe returned status %s", ErrAuth, resp.Status)
	}

	// An unauthenticated session gets redirected to the login page,
	// which is the only page rendering the hidden `_csrf` input.
	if _, err := extractCSRFInput(bytes.NewReader(resp.Bytes())); err == nil {
		return fmt.Errorf("%w: server returned the login form, check credentials", ErrAuth)
	}

	return nil
}
