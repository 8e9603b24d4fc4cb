package wikitable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><body>
<table class="wikitable">
<tr><th>Name</th><th>Line</th><th>Coords</th></tr>
<tr>
  <td><a href="/wiki/Central_station">Central (中環)[1]</a></td>
  <td>Island Line</td>
  <td><a href="https://geohack.toolforge.org/geohack.php?params=22.281944_N_114.158056_E">map</a></td>
</tr>
<tr>
  <td>Admiralty</td>
  <td>Island Line, Tsuen Wan Line</td>
  <td><span class="geo">22.279412; 114.164559</span></td>
</tr>
</table>
<table class="wikitable">
<tr><th>Only a header</th></tr>
</table>
<table>
<tr><th>h</th></tr>
<tr><td>not a wikitable</td></tr>
</table>
</body></html>`

func TestParseExtractsWikitables(t *testing.T) {
	tables, err := Parse(strings.NewReader(samplePage))
	require.NoError(t, err)

	// The single-row table and the non-wikitable are both skipped.
	require.Len(t, tables, 1)
	require.Len(t, tables[0].Rows, 2)

	first := tables[0].Rows[0]
	require.Len(t, first.Cells, 3)
	assert.Equal(t, "Central (中環)[1]", first.Cells[0].Text)
	require.NotEmpty(t, first.Cells[0].Links)
	assert.Equal(t, "/wiki/Central_station", first.Cells[0].Links[0].Href)
	assert.Equal(t, "Central (中環)[1]", first.Cells[0].Links[0].Text)

	links := first.Links()
	require.Len(t, links, 2)
	assert.Contains(t, links[1].Href, "geohack")

	second := tables[0].Rows[1]
	require.Len(t, second.GeoSpans(), 1)
	assert.Equal(t, "22.279412; 114.164559", second.GeoSpans()[0])
}

func TestParseSkipsEmptyRows(t *testing.T) {
	page := `<table class="wikitable">
	<tr><th>h</th></tr>
	<tr></tr>
	<tr><td>data</td></tr>
	</table>`
	tables, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Len(t, tables[0].Rows, 1)
}

func TestParseNoTables(t *testing.T) {
	tables, err := Parse(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestDataRowsFlattens(t *testing.T) {
	page := `<table class="wikitable">
	<tr><th>h</th></tr><tr><td>a</td></tr>
	</table>
	<table class="wikitable">
	<tr><th>h</th></tr><tr><td>b</td></tr><tr><td>c</td></tr>
	</table>`
	tables, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	rows := DataRows(tables)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Cells[0].Text)
	assert.Equal(t, "c", rows[2].Cells[0].Text)
}
