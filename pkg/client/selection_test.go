package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectionToggle(t *testing.T) {
	sel := NewSelection()
	require.True(t, sel.Toggle("a"))
	require.True(t, sel.Has("a"))
	require.False(t, sel.Toggle("a"))
	require.False(t, sel.Has("a"))
	require.Zero(t, sel.Count())
}

func TestSelectAllThenToggleCollapses(t *testing.T) {
	sel := NewSelection()
	filtered := []string{"a", "b", "c"}

	sel.SelectAll(filtered)
	require.Equal(t, []string{"a", "b", "c"}, sel.IDs())

	// Header checkbox clicked again with everything selected: clears.
	sel.SelectAll(filtered)
	require.Zero(t, sel.Count())
}

func TestSelectAllReplacesPartialSelection(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("a")
	sel.Toggle("stale")

	sel.SelectAll([]string{"a", "b"})
	require.Equal(t, []string{"a", "b"}, sel.IDs())
	require.False(t, sel.Has("stale"))
}

func TestSelectAllTracksFilteredView(t *testing.T) {
	sel := NewSelection()
	sel.SelectAll([]string{"a", "b", "c"})

	// The filter narrowed, so select-all over the new view is a fresh set,
	// not a clear, because the id sets differ.
	sel.SelectAll([]string{"a", "b"})
	require.Equal(t, []string{"a", "b"}, sel.IDs())
}

func TestSelectionClear(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("a")
	sel.Clear()
	require.Zero(t, sel.Count())
	require.Empty(t, sel.IDs())
}

func TestSelectAllEmptyView(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("a")
	sel.SelectAll(nil)
	require.Zero(t, sel.Count())
}
