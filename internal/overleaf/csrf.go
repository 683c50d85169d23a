package overleaf

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// Overleaf embeds the anti-forgery token in two places: the login page
// carries it in a hidden form input, every project page exposes it in a
// meta tag for the editor frontend.
const (
	csrfInputName = "_csrf"
	csrfMetaName  = "ol-csrfToken"
)

// extractCSRFInput returns the value of the hidden `_csrf` input on the
// login page.
func extractCSRFInput(r io.Reader) (string, error) {
	token, err := extractAttr(r, "input", csrfInputName, "value")
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("%w: no input named %q", ErrCSRFNotFound, csrfInputName)
	}
	return token, nil
}

// extractCSRFMeta returns the content of the `ol-csrfToken` meta tag on a
// project page.
func extractCSRFMeta(r io.Reader) (string, error) {
	token, err := extractAttr(r, "meta", csrfMetaName, "content")
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("%w: no meta named %q", ErrCSRFNotFound, csrfMetaName)
	}
	return token, nil
}

// extractAttr parses the document and returns the wanted attribute of the
// first <elem name="name"> node, or "" if no such node exists.
func extractAttr(r io.Reader, elem, name, attr string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("%w: parse page: %w", ErrAuth, err)
	}

	var walk func(*html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == elem {
			var nodeName, value string
			for _, a := range n.Attr {
				switch a.Key {
				case "name":
					nodeName = a.Val
				case attr:
					value = a.Val
				}
			}
			if nodeName == name {
				return value
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if v := walk(c); v != "" {
				return v
			}
		}
		return ""
	}

	return walk(doc), nil
}
