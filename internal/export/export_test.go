package export_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/masoudtahsiri/sitemap-extractor/internal/export"
	"github.com/masoudtahsiri/sitemap-extractor/internal/sitemap"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	got, err := export.CSV([]string{"https://a/p1", "https://a/p2", "https://a/p3"})
	require.NoError(t, err)

	assert.Equal(t, "URL\r\nhttps://a/p1\r\nhttps://a/p2\r\nhttps://a/p3\r\n", got)
}

func TestCSV_Quoting(t *testing.T) {
	t.Parallel()

	got, err := export.CSV([]string{`https://a/?q=a,b`, `https://a/"quoted"`, "https://a/line\nbreak"})
	require.NoError(t, err)

	assert.Equal(t,
		"URL\r\n\"https://a/?q=a,b\"\r\n\"https://a/\"\"quoted\"\"\"\r\n\"https://a/line\nbreak\"\r\n",
		got)
}

func TestCSV_Empty(t *testing.T) {
	t.Parallel()

	got, err := export.CSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "URL\r\n", got)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_WriterError(t *testing.T) {
	t.Parallel()

	err := export.WriteCSV(failingWriter{}, []string{"https://a/p1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, []string{"https://a/p1", "https://a/p2"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.SheetName}, f.GetSheetList())

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"URL"}, {"https://a/p1"}, {"https://a/p2"}}, rows)
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	export.WriteTable(&buf, []string{"https://a/p1", "https://a/p2"})

	out := buf.String()
	assert.Contains(t, out, "https://a/p1")
	assert.Contains(t, out, "https://a/p2")
	assert.Contains(t, out, "URL")
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	res := &sitemap.Result{
		URLs: []string{"https://a/p1"},
		Branches: []sitemap.Branch{
			{URL: "https://a/index.xml", Depth: 0, Kind: sitemap.KindIndex, Children: 2, Duration: time.Millisecond},
			{URL: "https://a/s1.xml", Depth: 1, Kind: sitemap.KindLeaf, Entries: 1, Added: 1},
			{URL: "https://a/s2.xml", Depth: 1, Err: sitemap.ClassifyHTTPStatus(404, "https://a/s2.xml")},
		},
		Visited: 3,
		Skipped: map[sitemap.SkipReason]int{sitemap.SkipDuplicate: 2},
	}

	var buf bytes.Buffer
	export.WriteReport(&buf, res)

	out := buf.String()
	assert.Contains(t, out, "https://a/index.xml")
	assert.Contains(t, out, "index")
	assert.Contains(t, out, "not_found")
	assert.True(t, strings.Count(out, "https://a/s") >= 2)
}
