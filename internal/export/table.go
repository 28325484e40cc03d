package export

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/masoudtahsiri/sitemap-extractor/internal/sitemap"
)

// WriteTable renders the URLs as a numbered table.
func WriteTable(w io.Writer, urls []string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"#", Header})
	for i, u := range urls {
		t.AppendRow(table.Row{i + 1, u})
	}
	t.AppendFooter(table.Row{"", len(urls)})

	t.Render()
}

// WriteReport renders one row per fetched sitemap with its outcome.
func WriteReport(w io.Writer, res *sitemap.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Depth", "Sitemap", "Kind", "Children", "Entries", "New", "Took", "Error"})
	for _, b := range res.Branches {
		kind, errText := string(b.Kind), ""
		if b.Err != nil {
			kind = "failed"
			errText = string(sitemap.ErrorTypeOf(b.Err))
			if errText == "" {
				errText = b.Err.Error()
			}
		}
		t.AppendRow(table.Row{
			b.Depth,
			b.URL,
			kind,
			b.Children,
			b.Entries,
			b.Added,
			b.Duration.Round(time.Millisecond),
			errText,
		})
	}
	t.AppendFooter(table.Row{
		"", "visited", res.Visited,
		"skipped", skippedTotal(res.Skipped),
		"urls", len(res.URLs), "",
	})

	t.Render()
}

func skippedTotal(skipped map[sitemap.SkipReason]int) int {
	total := 0
	for _, n := range skipped {
		total += n
	}
	return total
}
