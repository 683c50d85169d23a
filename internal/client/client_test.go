package client

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olsync/olsync/internal/config"
	"github.com/olsync/olsync/internal/overleaf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer is a minimal Overleaf stand-in: a login flow that always
// succeeds, a project page with a CSRF meta tag, the zip export and the
// upload endpoint.
type fakeServer struct {
	srv *httptest.Server

	zipContent []byte
	failUpload int // 1-based index of the upload that returns a 500

	uploads []string // uploaded file names, in order
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	f := &fakeServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><form action="/login">
			<input type="hidden" name="_csrf" value="login-token">
		</form></body></html>`)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "overleaf_session", Value: "cookie", Path: "/"})
		fmt.Fprint(w, `{"redir":"/project"}`)
	})
	mux.HandleFunc("GET /project", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="ol-csrfToken" content="meta-token"></head></html>`)
	})
	mux.HandleFunc("GET /project/{id}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="ol-csrfToken" content="meta-token"></head></html>`)
	})
	mux.HandleFunc("GET /project/{id}/download/zip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(f.zipContent)
	})
	mux.HandleFunc("POST /project/{id}/upload", func(w http.ResponseWriter, r *http.Request) {
		if f.failUpload != 0 && len(f.uploads)+1 == f.failUpload {
			http.Error(w, "upload failed", http.StatusInternalServerError)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "bad multipart", http.StatusBadRequest)
			return
		}
		f.uploads = append(f.uploads, r.PostFormValue("name"))
		fmt.Fprint(w, `{"success":true}`)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// newTestClient wires a SyncClient against the fake server with a fresh
// git working directory, and logs it in.
func newTestClient(t *testing.T, fake *fakeServer, dir string) *SyncClient {
	t.Helper()

	cfg := &config.Config{
		Email:     "alice@example.com",
		Password:  "hunter2",
		ServerURL: fake.srv.URL,
		ProjectID: "proj-1",
		FolderID:  "folder-1",
		DataDir:   dir,
	}
	require.NoError(t, cfg.Validate())

	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Login(t.Context()))
	return c
}

func readMarker(t *testing.T, c *SyncClient) string {
	t.Helper()
	data, err := os.ReadFile(c.revisionPath())
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}

func TestUpload_NoMarker_UploadsFullTrackedSet(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	writeFile(t, dir, "a.tex", "a")
	writeFile(t, dir, "b.tex", "b")
	commitAll(t, repo, "initial")

	fake := newFakeServer(t)
	c := newTestClient(t, fake, dir)

	require.NoError(t, c.Upload(t.Context()))
	assert.ElementsMatch(t, []string{"a.tex", "b.tex"}, fake.uploads)

	listing, err := os.ReadFile(c.changedPath())
	require.NoError(t, err)
	assert.Equal(t, "a.tex\nb.tex\n", string(listing))
}

func TestDownloadThenUpload_NoLocalChanges_IsNoop(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	writeFile(t, dir, "a.tex", "a v1")
	head := commitAll(t, repo, "initial")

	fake := newFakeServer(t)
	fake.zipContent = makeZip(t, map[string]string{"a.tex": "a v1"})
	c := newTestClient(t, fake, dir)

	require.NoError(t, c.Download(t.Context()))
	assert.Equal(t, head, readMarker(t, c))

	require.NoError(t, c.Upload(t.Context()))
	assert.Empty(t, fake.uploads)

	listing, err := os.ReadFile(c.changedPath())
	require.NoError(t, err)
	assert.Empty(t, string(listing))
}

func TestDownload_OverwritesMarkerUnconditionally(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	writeFile(t, dir, "a.tex", "a")
	head := commitAll(t, repo, "initial")

	fake := newFakeServer(t)
	fake.zipContent = makeZip(t, map[string]string{"a.tex": "a"})
	c := newTestClient(t, fake, dir)

	require.NoError(t, c.writeRevision("bogus-stale-marker"))
	require.NoError(t, c.Download(t.Context()))
	assert.Equal(t, head, readMarker(t, c))
}

func TestUpload_AfterMarker_OnlyModifiedFile(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	writeFile(t, dir, "a.tex", "a v1")
	writeFile(t, dir, "b.tex", "b v1")
	commitAll(t, repo, "initial")

	fake := newFakeServer(t)
	fake.zipContent = makeZip(t, map[string]string{
		"a.tex": "a v1",
		"b.tex": "b v1",
	})
	c := newTestClient(t, fake, dir)

	// seed the marker
	require.NoError(t, c.Download(t.Context()))

	// modify only a.tex
	writeFile(t, dir, "a.tex", "a v2")

	require.NoError(t, c.Upload(t.Context()))
	assert.Equal(t, []string{"a.tex"}, fake.uploads)
}

func TestSync_DownloadThenUploadInOneSession(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	writeFile(t, dir, "a.tex", "a v1")
	writeFile(t, dir, "b.tex", "b v1")
	commitAll(t, repo, "initial")

	// the archive only carries a.tex, so extraction cannot clobber the
	// local change to b.tex
	fake := newFakeServer(t)
	fake.zipContent = makeZip(t, map[string]string{"a.tex": "a v1"})
	c := newTestClient(t, fake, dir)

	// seed the marker, then change b.tex locally
	require.NoError(t, c.Download(t.Context()))
	writeFile(t, dir, "b.tex", "b v2")

	require.NoError(t, c.Sync(t.Context()))
	assert.Equal(t, []string{"b.tex"}, fake.uploads)
}

func TestUpload_NestedFileUsesBaseName(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	writeFile(t, dir, "sections/intro.tex", "intro")
	commitAll(t, repo, "initial")

	fake := newFakeServer(t)
	c := newTestClient(t, fake, dir)

	require.NoError(t, c.Upload(t.Context()))
	assert.Equal(t, []string{"intro.tex"}, fake.uploads)
}

func TestUpload_StopsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	writeFile(t, dir, "a.tex", "a")
	writeFile(t, dir, "b.tex", "b")
	writeFile(t, dir, "c.tex", "c")
	commitAll(t, repo, "initial")

	fake := newFakeServer(t)
	fake.failUpload = 2
	c := newTestClient(t, fake, dir)

	err := c.Upload(t.Context())
	assert.ErrorIs(t, err, overleaf.ErrUpload)
	assert.Equal(t, []string{"a.tex"}, fake.uploads, "files after the failing one are not attempted")
}

func TestClean_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	writeFile(t, dir, "a.tex", "a")
	head := commitAll(t, repo, "initial")

	fake := newFakeServer(t)
	fake.zipContent = makeZip(t, map[string]string{"a.tex": "a"})
	c := newTestClient(t, fake, dir)

	require.NoError(t, c.Download(t.Context()))
	require.NoError(t, c.Upload(t.Context()))

	require.FileExists(t, c.cookiePath())
	require.FileExists(t, c.archivePath())
	require.FileExists(t, c.changedPath())

	require.NoError(t, c.Clean())
	assert.NoFileExists(t, c.cookiePath())
	assert.NoFileExists(t, c.archivePath())
	assert.NoFileExists(t, c.changedPath())

	// the working directory and the revision marker survive
	assert.FileExists(t, filepath.Join(dir, "a.tex"))
	assert.Equal(t, head, readMarker(t, c))

	// second run is a no-op
	require.NoError(t, c.Clean())
}

func TestDropBlank(t *testing.T) {
	assert.Equal(t, []string{"a.tex", "b.tex"}, dropBlank([]string{"a.tex", "", "b.tex", "  ", ""}))
	assert.Empty(t, dropBlank([]string{"", ""}))
}
