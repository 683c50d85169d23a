package overleaf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCSRFInput(t *testing.T) {
	t.Run("well-formed login page", func(t *testing.T) {
		page := `<html><body><form action="/login">
			<input type="hidden" name="_csrf" value="tok-123">
			<input type="email" name="email">
		</form></body></html>`
		token, err := extractCSRFInput(strings.NewReader(page))
		require.NoError(t, err)
		assert.Equal(t, "tok-123", token)
	})

	t.Run("token field missing", func(t *testing.T) {
		page := `<html><body><form><input type="email" name="email"></form></body></html>`
		_, err := extractCSRFInput(strings.NewReader(page))
		assert.ErrorIs(t, err, ErrCSRFNotFound)
		assert.ErrorIs(t, err, ErrAuth)
	})

	t.Run("empty value", func(t *testing.T) {
		page := `<input type="hidden" name="_csrf" value="">`
		_, err := extractCSRFInput(strings.NewReader(page))
		assert.ErrorIs(t, err, ErrCSRFNotFound)
	})

	t.Run("other hidden inputs ignored", func(t *testing.T) {
		page := `<form>
			<input type="hidden" name="redirect" value="/project">
			<input type="hidden" name="_csrf" value="the-one">
		</form>`
		token, err := extractCSRFInput(strings.NewReader(page))
		require.NoError(t, err)
		assert.Equal(t, "the-one", token)
	})
}

func TestExtractCSRFMeta(t *testing.T) {
	t.Run("project page", func(t *testing.T) {
		page := `<html><head>
			<meta charset="utf-8">
			<meta name="ol-csrfToken" content="meta-tok">
		</head><body></body></html>`
		token, err := extractCSRFMeta(strings.NewReader(page))
		require.NoError(t, err)
		assert.Equal(t, "meta-tok", token)
	})

	t.Run("meta missing", func(t *testing.T) {
		page := `<html><head><meta charset="utf-8"></head></html>`
		_, err := extractCSRFMeta(strings.NewReader(page))
		assert.ErrorIs(t, err, ErrCSRFNotFound)
	})
}
