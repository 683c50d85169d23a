package overleaf

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/olsync/olsync/internal/utils"
)

// SaveCookies persists the current session cookies to path. The file is
// transient state: it is rewritten on every login and removed by clean.
func (s *SDK) SaveCookies(path string) error {
	jar := s.client.GetClient().Jar
	if jar == nil {
		return nil
	}

	cookies := jar.Cookies(s.baseURL)

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("sdk: marshal cookies: %w", err)
	}

	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// LoadCookies restores previously saved session cookies into the client.
// A missing cookie file is not an error.
func (s *SDK) LoadCookies(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}

	var cookies []*http.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("sdk: parse cookies %q: %w", path, err)
	}

	s.client.SetCommonCookies(cookies...)
	return nil
}
