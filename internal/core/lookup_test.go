package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/clipbox/internal/model"
)

func lookupSnippets() []model.Snippet {
	return []model.Snippet{
		{ID: "01AAA", Content: "first", Type: "work", Key: "sig", UpdatedAt: 10},
		{ID: "01BBB", Content: "second", Type: "", Key: "SIG", UpdatedAt: 30},
		{ID: "01CCC", Content: "third", Type: "code", UpdatedAt: 20},
		{ID: "01DDD", Content: "fourth", Type: "work", UpdatedAt: 5},
	}
}

func TestLookupByID(t *testing.T) {
	snippets := lookupSnippets()

	sn := LookupByID(snippets, "01CCC")
	require.NotNil(t, sn)
	assert.Equal(t, "third", sn.Content)

	assert.Nil(t, LookupByID(snippets, "missing"))
}

func TestLookupByIndex(t *testing.T) {
	snippets := lookupSnippets()

	sn := LookupByIndex(snippets, 1)
	require.NotNil(t, sn)
	assert.Equal(t, "01AAA", sn.ID)

	sn = LookupByIndex(snippets, 4)
	require.NotNil(t, sn)
	assert.Equal(t, "01DDD", sn.ID)

	assert.Nil(t, LookupByIndex(snippets, 0))
	assert.Nil(t, LookupByIndex(snippets, 5))
	assert.Nil(t, LookupByIndex(snippets, -1))
}

func TestLookupByKey(t *testing.T) {
	snippets := lookupSnippets()

	sn := LookupByKey(snippets, "sig")
	require.NotNil(t, sn)
	assert.Equal(t, "01BBB", sn.ID, "most recently updated match wins")

	assert.Nil(t, LookupByKey(snippets, "nope"))
	assert.Nil(t, LookupByKey(snippets, "  "))
}

func TestUniqueTypes(t *testing.T) {
	assert.Equal(t, []string{"code", "work"}, UniqueTypes(lookupSnippets()))
	assert.Empty(t, UniqueTypes(nil))
}

func TestTypeCounts(t *testing.T) {
	counts := TypeCounts(lookupSnippets())
	assert.Equal(t, 2, counts["work"])
	assert.Equal(t, 1, counts["code"])
	assert.Equal(t, 1, counts[model.UncategorizedLabel])
}
