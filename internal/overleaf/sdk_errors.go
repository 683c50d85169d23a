package overleaf

import (
	"errors"
	"fmt"
)

var (
	ErrNoServerURL = errors.New("sdk: server url missing")

	// ErrAuth covers the whole login contract: a missing anti-forgery
	// token, a rejected login post, or a session that fails the
	// post-login probe.
	ErrAuth = errors.New("sdk: authentication failed")

	// ErrNetwork is a transport-level failure on any request.
	ErrNetwork = errors.New("sdk: request failed")

	// ErrUpload is a failed file upload. The first failing file aborts
	// the whole upload run.
	ErrUpload = errors.New("sdk: upload failed")
)

// ErrCSRFNotFound means the served page carried no anti-forgery token
// where one was expected. It is an authentication failure.
var ErrCSRFNotFound = fmt.Errorf("%w: csrf token not found", ErrAuth)
