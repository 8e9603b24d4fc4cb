package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		raw       string
		primary   string
		secondary string
	}{
		{"Central (中環)[1]", "Central", "中環"},
		{"Central (中環)", "Central", "中環"},
		{"Admiralty", "Admiralty", ""},
		{"Kowloon[2]", "Kowloon", ""},
		// Latin parenthetical stays in the primary name.
		{"Racecourse (closed)", "Racecourse (closed)", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		primary, secondary := SplitName(tt.raw)
		assert.Equal(t, tt.primary, primary, "raw: %q", tt.raw)
		assert.Equal(t, tt.secondary, secondary, "raw: %q", tt.raw)
	}
}

func TestSplitNameInspectsFirstSegmentOnly(t *testing.T) {
	primary, secondary := SplitName("Central (中環) (IL)")
	assert.Equal(t, "Central", primary)
	assert.Equal(t, "中環", secondary)

	// First segment is Latin: nothing is split off, even though a later
	// segment has Han characters.
	primary, secondary = SplitName("Central (IL) (中環)")
	assert.Equal(t, "Central (IL) (中環)", primary)
	assert.Empty(t, secondary)
}

func TestSplitNameIdempotent(t *testing.T) {
	for _, raw := range []string{"Central (中環)[1]", "Admiralty", "Racecourse (closed)"} {
		p1, s1 := SplitName(raw)
		p2, s2 := SplitName(p1)
		assert.Equal(t, p1, p2, "raw: %q", raw)
		if s1 == "" {
			assert.Empty(t, s2)
		}
	}
}

func TestStripFootnotes(t *testing.T) {
	assert.Equal(t, "Island Line", StripFootnotes("Island Line[3]"))
	assert.Equal(t, "East Rail Line", StripFootnotes("East Rail[1] Line[12]"))
}
