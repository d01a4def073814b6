package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/nepsewatch/internal/models"
)

func TestDefault_LoadsEmbeddedList(t *testing.T) {
	c := Default()

	assert.Equal(t, 54, c.Len())

	nabil, ok := c.Lookup("NABIL")
	require.True(t, ok)
	assert.Equal(t, "Nabil Bank Limited", nabil.Name)
	assert.Equal(t, "Commercial Bank", nabil.Sector)
}

func TestDefault_DuplicateSymbolFirstWins(t *testing.T) {
	hidcl, ok := Default().Lookup("HIDCL")
	require.True(t, ok)
	assert.Equal(t, "Hydropower", hidcl.Sector)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	c := Default()

	s, ok := c.Lookup("  ntc ")
	require.True(t, ok)
	assert.Equal(t, "NTC", s.Symbol)
	assert.Equal(t, "Nepal Telecom", s.Name)
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Default().Lookup("NOPE")
	assert.False(t, ok)
}

func TestAll_SortedAndCopied(t *testing.T) {
	c := New([]models.Security{
		{Symbol: "ZZZ", Name: "Last"},
		{Symbol: "aaa", Name: "First"},
		{Symbol: "", Name: "Ignored"},
		{Symbol: "AAA", Name: "Duplicate"},
	})

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "AAA", all[0].Symbol)
	assert.Equal(t, "First", all[0].Name)
	assert.Equal(t, "ZZZ", all[1].Symbol)

	all[0].Name = "changed"
	s, _ := c.Lookup("AAA")
	assert.Equal(t, "First", s.Name)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
[[securities]]
symbol = "upper"
name = " Upper Tamakoshi Hydropower Ltd "
sector = "Hydropower"
`))
	require.NoError(t, err)

	s, ok := c.Lookup("UPPER")
	require.True(t, ok)
	assert.Equal(t, "Upper Tamakoshi Hydropower Ltd", s.Name)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`[[securities]`))
	assert.Error(t, err)
}
