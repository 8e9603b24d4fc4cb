package coordex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkgeo/station-cli/internal/model"
	"github.com/hkgeo/station-cli/internal/wikitable"
)

func rowWithLink(href string) wikitable.Row {
	return wikitable.Row{Cells: []wikitable.Cell{
		{Text: "Central", Links: []wikitable.Link{{Href: href, Text: "map"}}},
	}}
}

func TestLinkDerived(t *testing.T) {
	chain := NewChain()

	row := rowWithLink("https://geohack.toolforge.org/geohack.php?params=22.284722_N_114.158611_E")
	coord, src := chain.Extract(row)
	require.NotNil(t, coord)
	assert.Equal(t, model.SourceLinkDerived, src)
	assert.InDelta(t, 22.284722, coord.Lat, 1e-9)
	assert.InDelta(t, 114.158611, coord.Lon, 1e-9)
}

func TestLinkDerivedHemisphereSign(t *testing.T) {
	row := rowWithLink("geohack.php?params=22.5_S_114.5_W")
	coord, ok := linkDerived{}.Attempt(row)
	require.True(t, ok)
	assert.InDelta(t, -22.5, coord.Lat, 1e-9)
	assert.InDelta(t, -114.5, coord.Lon, 1e-9)

	// Southern-hemisphere parse is out of the validity box, so the chain
	// discards it entirely.
	c, src := NewChain().Extract(row)
	assert.Nil(t, c)
	assert.Equal(t, model.SourceNone, src)
}

func TestInlineGeo(t *testing.T) {
	row := wikitable.Row{Cells: []wikitable.Cell{
		{Text: "Admiralty", GeoSpans: []string{"22.279412; 114.164559"}},
	}}
	coord, src := NewChain().Extract(row)
	require.NotNil(t, coord)
	assert.Equal(t, model.SourceInlineGeo, src)
	assert.InDelta(t, 22.279412, coord.Lat, 1e-9)
}

func TestInlineGeoCJKComma(t *testing.T) {
	row := wikitable.Row{Cells: []wikitable.Cell{
		{GeoSpans: []string{"22.279412，114.164559"}},
	}}
	coord, ok := inlineGeo{}.Attempt(row)
	require.True(t, ok)
	assert.InDelta(t, 114.164559, coord.Lon, 1e-9)
}

func TestFreetextRegex(t *testing.T) {
	for _, text := range []string{
		"22.284722°N 114.158611°E",
		"22.284722, 114.158611",
		"22.284722 / 114.158611",
	} {
		row := wikitable.Row{Cells: []wikitable.Cell{{Text: text}}}
		coord, src := NewChain().Extract(row)
		require.NotNil(t, coord, "text: %s", text)
		assert.Equal(t, model.SourceFreetextRegex, src)
		assert.InDelta(t, 22.284722, coord.Lat, 1e-9)
		assert.InDelta(t, 114.158611, coord.Lon, 1e-9)
	}
}

func TestChainPriority(t *testing.T) {
	// Row carries both a geohack link and free-text coordinates; the
	// link-derived result wins.
	row := wikitable.Row{Cells: []wikitable.Cell{
		{
			Text:  "22.3, 114.2",
			Links: []wikitable.Link{{Href: "geohack.php?params=22.284722_N_114.158611_E"}},
		},
	}}
	coord, src := NewChain().Extract(row)
	require.NotNil(t, coord)
	assert.Equal(t, model.SourceLinkDerived, src)
	assert.InDelta(t, 22.284722, coord.Lat, 1e-9)
}

func TestChainFallsThroughOutOfBounds(t *testing.T) {
	// Link parses but is outside the box; the inline span is used instead.
	row := wikitable.Row{Cells: []wikitable.Cell{
		{
			Links:    []wikitable.Link{{Href: "geohack.php?params=40.0_N_74.0_W"}},
			GeoSpans: []string{"22.279412; 114.164559"},
		},
	}}
	coord, src := NewChain().Extract(row)
	require.NotNil(t, coord)
	assert.Equal(t, model.SourceInlineGeo, src)
}

func TestChainNoMatch(t *testing.T) {
	row := wikitable.Row{Cells: []wikitable.Cell{{Text: "no numbers here"}}}
	coord, src := NewChain().Extract(row)
	assert.Nil(t, coord)
	assert.Equal(t, model.SourceNone, src)
}
