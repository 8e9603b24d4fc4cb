// Package wikitable parses tabular wiki markup into candidate row records.
package wikitable

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// ErrSourceUnavailable signals that the source document could not be
// fetched or parsed. Callers fall back to an alternate source URL if one
// is configured.
var ErrSourceUnavailable = eris.New("wikitable: source unavailable")

// Link is a hyperlink found inside a table cell.
type Link struct {
	Href string
	Text string
}

// Cell is one table cell with its plain text, embedded links, and any
// geo microformat spans (span class="geo").
type Cell struct {
	Text     string
	Links    []Link
	GeoSpans []string
}

// Row is one data row. Rows are owned by the parsing stage; the slice is
// restartable by re-ranging.
type Row struct {
	Cells []Cell
}

// Links returns all hyperlinks across the row's cells, in document order.
func (r Row) Links() []Link {
	var links []Link
	for _, c := range r.Cells {
		links = append(links, c.Links...)
	}
	return links
}

// GeoSpans returns all geo microformat span texts across the row's cells.
func (r Row) GeoSpans() []string {
	var spans []string
	for _, c := range r.Cells {
		spans = append(spans, c.GeoSpans...)
	}
	return spans
}

// Table is one parsed data table, header row already dropped.
type Table struct {
	Rows []Row
}

// Parse extracts all wikitable-classed tables from the document. Tables
// with fewer than two rows are skipped, the header row of each surviving
// table is dropped, and rows with zero cells are skipped.
func Parse(r io.Reader) ([]Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(ErrSourceUnavailable, err.Error())
	}

	var tables []Table
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "table" && hasClass(n, "wikitable") {
			if t, ok := parseTable(n); ok {
				tables = append(tables, t)
			}
			return false // don't recurse into nested tables
		}
		return true
	})
	return tables, nil
}

// DataRows flattens all tables into a single row sequence in document order.
func DataRows(tables []Table) []Row {
	var rows []Row
	for _, t := range tables {
		rows = append(rows, t.Rows...)
	}
	return rows
}

func parseTable(table *html.Node) (Table, bool) {
	var trs []*html.Node
	walk(table, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "tr" {
			trs = append(trs, n)
			return false
		}
		return true
	})

	if len(trs) < 2 {
		return Table{}, false
	}

	var t Table
	for _, tr := range trs[1:] { // drop header row
		row := parseRow(tr)
		if len(row.Cells) == 0 {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, true
}

func parseRow(tr *html.Node) Row {
	var row Row
	for n := tr.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode || (n.Data != "td" && n.Data != "th") {
			continue
		}
		row.Cells = append(row.Cells, parseCell(n))
	}
	return row
}

func parseCell(td *html.Node) Cell {
	var cell Cell
	var text strings.Builder

	walk(td, func(n *html.Node) bool {
		switch {
		case n.Type == html.TextNode:
			text.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "a":
			link := Link{Href: attr(n, "href"), Text: nodeText(n)}
			if link.Href != "" || link.Text != "" {
				cell.Links = append(cell.Links, link)
			}
		case n.Type == html.ElementNode && n.Data == "span" && hasClass(n, "geo"):
			cell.GeoSpans = append(cell.GeoSpans, nodeText(n))
		}
		return true
	})

	cell.Text = strings.Join(strings.Fields(text.String()), " ")
	return cell
}

// walk visits n and its descendants. The visitor returns false to stop
// descending into the current node's children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if visit(c) {
			walk(c, visit)
		}
	}
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return strings.TrimSpace(b.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
