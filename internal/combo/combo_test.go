package combo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g := Generate([]string{"PyPI", "Crates", "NPM"})

	require.Equal(t, []int{2, 3}, g.Sizes())
	assert.Equal(t, []Subset{
		{"Crates", "NPM"},
		{"Crates", "PyPI"},
		{"NPM", "PyPI"},
	}, g[2])
	assert.Equal(t, []Subset{{"Crates", "NPM", "PyPI"}}, g[3])
	assert.Equal(t, 4, g.Count())
	assert.Len(t, g.All(), 4)
	assert.Equal(t, Subset{"Crates", "NPM"}, g.All()[0])
}

func TestGenerate_CountIsPowerSetMinusSmallSubsets(t *testing.T) {
	names := []string{"Crates", "Go", "Maven", "NPM", "PHP", "PyPI", "Ruby"}
	g := Generate(names)
	// 2^7 - 7 - 1
	assert.Equal(t, 120, g.Count())
	assert.Len(t, g[7], 1)
	assert.Len(t, g[2], 21)
}

func TestGenerate_TooFewEcosystems(t *testing.T) {
	assert.Empty(t, Generate([]string{"NPM"}))
	assert.Empty(t, Generate(nil))
	assert.Empty(t, Generate([]string{"NPM", "NPM"}))
}

func TestSubsetNaming(t *testing.T) {
	s := Subset{"Crates", "NPM", "PyPI"}
	assert.Equal(t, "Crates_NPM_PyPI", s.Name())
	assert.Equal(t, "Crates + NPM + PyPI", s.Label())
	assert.Equal(t, "3_ecosystems/Crates_NPM_PyPI.csv", s.File())
	assert.Equal(t, "Crates", s.Primary())
	assert.True(t, s.Contains("NPM"))
	assert.False(t, s.Contains("Go"))
}

func TestGenerate_DoesNotMutateInput(t *testing.T) {
	in := []string{"b", "a"}
	Generate(in)
	assert.Equal(t, []string{"b", "a"}, in)
}
