package extract_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/masoudtahsiri/sitemap-extractor/cmd/extract"
	"github.com/masoudtahsiri/sitemap-extractor/internal/export"
	"github.com/masoudtahsiri/sitemap-extractor/internal/sitemap"
)

const (
	indexXML = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>%[1]s/a.xml</loc></sitemap>
  <sitemap><loc>%[1]s/b.xml</loc></sitemap>
</sitemapindex>`
	leafA = `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/p2</loc></url>
  <url><loc>https://example.com/p1</loc></url>
</urlset>`
	leafB = `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/p2</loc></url>
  <url><loc>https://example.com/p3</loc></url>
</urlset>`
	emptyLeaf = `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`
)

func newSitemapServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(fmt.Sprintf(indexXML, srv.URL)))
	})
	mux.HandleFunc("/a.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(leafA))
	})
	mux.HandleFunc("/b.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(leafB))
	})
	mux.HandleFunc("/empty.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(emptyLeaf))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := extract.Command()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestExtract_CSVToStdout(t *testing.T) {
	srv := newSitemapServer(t)

	stdout, stderr, err := execute(t, srv.URL+"/sitemap.xml")
	require.NoError(t, err)

	assert.Equal(t,
		"URL\r\nhttps://example.com/p1\r\nhttps://example.com/p2\r\nhttps://example.com/p3\r\n",
		stdout)
	assert.Contains(t, stderr, "Extracted 3 URLs from 3 sitemaps")
}

func TestExtract_MaxDepthZeroFetchesRootOnly(t *testing.T) {
	srv := newSitemapServer(t)

	_, _, err := execute(t, srv.URL+"/sitemap.xml", "--max-depth", "0")

	require.ErrorIs(t, err, extract.ErrNoURLs)
	assert.Equal(t, "No URLs found in sitemap", err.Error())
}

func TestExtract_EmptySitemap(t *testing.T) {
	srv := newSitemapServer(t)

	stdout, _, err := execute(t, srv.URL+"/empty.xml")

	require.ErrorIs(t, err, extract.ErrNoURLs)
	assert.Empty(t, stdout)
}

func TestExtract_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want error
	}{
		{name: "blank", arg: "  ", want: sitemap.ErrURLRequired},
		{name: "no scheme", arg: "example.com/sitemap.xml", want: sitemap.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.arg)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtract_RejectsBadFlags(t *testing.T) {
	srv := newSitemapServer(t)
	root := srv.URL + "/sitemap.xml"

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown format", args: []string{"--format", "pdf"}},
		{name: "xlsx without output", args: []string{"--format", "xlsx"}},
		{name: "zero max sitemaps", args: []string{"--max-sitemaps", "0"}},
		{name: "negative depth", args: []string{"--max-depth", "-1"}},
		{name: "zero concurrency", args: []string{"--concurrency", "0"}},
		{name: "zero timeout", args: []string{"--fetch-timeout", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append([]string{root}, tt.args...)...)
			require.Error(t, err)
		})
	}
}

func TestExtract_TableWithReport(t *testing.T) {
	srv := newSitemapServer(t)

	stdout, stderr, err := execute(t, srv.URL+"/sitemap.xml", "--format", "table", "--report")
	require.NoError(t, err)

	assert.Contains(t, stdout, "https://example.com/p3")
	assert.Contains(t, stderr, srv.URL+"/a.xml")
	assert.Contains(t, stderr, "index")
}

func TestExtract_XLSXFile(t *testing.T) {
	srv := newSitemapServer(t)
	path := filepath.Join(t.TempDir(), "urls.xlsx")

	stdout, _, err := execute(t, srv.URL+"/sitemap.xml", "-f", "xlsx", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, export.Header, rows[0][0])
	assert.Equal(t, "https://example.com/p1", rows[1][0])
}

func TestExtract_FormatFromEnvironment(t *testing.T) {
	srv := newSitemapServer(t)
	t.Setenv("SITEMAP_FORMAT", "table")

	stdout, _, err := execute(t, srv.URL+"/sitemap.xml")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "\r\n")
	assert.Contains(t, stdout, "https://example.com/p1")
}

func TestExtract_FlagOverridesEnvironment(t *testing.T) {
	srv := newSitemapServer(t)
	t.Setenv("SITEMAP_FORMAT", "table")
	path := filepath.Join(t.TempDir(), "urls.csv")

	_, _, err := execute(t, srv.URL+"/sitemap.xml", "--format", "csv", "--output", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "URL\r\nhttps://example.com/p1\r\nhttps://example.com/p2\r\nhttps://example.com/p3\r\n", string(data))
}
