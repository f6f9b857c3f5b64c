package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDifferencePreservesOrder(t *testing.T) {
	got := Difference([]string{"users", "teams", "cyclists"}, []string{"teams"})
	assert.Equal(t, []string{"users", "cyclists"}, got)
	assert.Nil(t, Difference([]string{"a"}, []string{"a"}))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, Unique([]int{3, 1, 3, 2, 1}))
}

func TestSortedKeys(t *testing.T) {
	m := map[string]any{"value": 1, "@collection": "c", "property": "p"}
	assert.Equal(t, []string{"@collection", "property", "value"}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[int]bool{}))
}

func TestMapFilterContains(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(i int) int { return i * 2 })
	assert.Equal(t, []int{2, 4, 6}, doubled)

	even := Filter(doubled, func(i int) bool { return i%4 == 0 })
	assert.Equal(t, []int{4}, even)

	assert.True(t, Contains(doubled, 6))
	assert.False(t, Contains(doubled, 5))
}

func TestBuilderPoolReset(t *testing.T) {
	sb := GetBuilder()
	sb.WriteString("FOR d IN x")
	PutBuilder(sb)

	again := GetBuilder()
	defer PutBuilder(again)
	assert.Equal(t, 0, again.Len())
}
