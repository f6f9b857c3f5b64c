package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocate_OrdersByIndex(t *testing.T) {
	text := "a || b && c"
	got := Locate([]string{"||", "&&"}, text, true)

	assert.Equal(t, []IndexedValue{
		{Index: strings.Index(text, "||"), Value: "||"},
		{Index: strings.Index(text, "&&"), Value: "&&"},
	}, got)
}

func TestLocate_MergesMarkersInTextOrder(t *testing.T) {
	text := "a && b || c && d"
	got := Locate([]string{"||", "&&"}, text, true)

	assert.Equal(t, []IndexedValue{
		{Index: 2, Value: "&&"},
		{Index: 7, Value: "||"},
		{Index: 12, Value: "&&"},
	}, got)
}

func TestLocate_EmptyText(t *testing.T) {
	for _, markers := range [][]string{{"||"}, {"||", "&&"}, {"x"}, nil} {
		assert.Empty(t, Locate(markers, "", true))
	}
	assert.Empty(t, IndexOf("||", "", false))
}

func TestLocate_TiesKeepMarkerOrder(t *testing.T) {
	got := Locate([]string{"ab", "a"}, "ab", false)
	assert.Equal(t, []IndexedValue{{0, "ab"}, {0, "a"}}, got)

	got = Locate([]string{"a", "ab"}, "ab", false)
	assert.Equal(t, []IndexedValue{{0, "a"}, {0, "ab"}}, got)
}

func TestIndexOf_CaseFolding(t *testing.T) {
	text := "x AND y and z"

	assert.Equal(t, []IndexedValue{{2, "and"}, {8, "and"}}, IndexOf("and", text, true))
	assert.Equal(t, []IndexedValue{{8, "and"}}, IndexOf("and", text, false))
}

func TestIndexOf_NoOverlap(t *testing.T) {
	assert.Equal(t, []IndexedValue{{0, "||"}, {2, "||"}}, IndexOf("||", "||||", true))
	assert.Equal(t, []IndexedValue{{0, "||"}}, IndexOf("||", "|||", true))
}

func TestIndexOf_OperatorInsideLiteralIsStillFound(t *testing.T) {
	got := IndexOf("||", `name == "a || b"`, true)
	assert.Len(t, got, 1)
}
