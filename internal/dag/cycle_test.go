package dag

import (
	"errors"
	"testing"

	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/stretchr/testify/assert"
)

func edgesOf(graph map[string][]string) Edges {
	return func(id string) []string { return graph[id] }
}

func TestDetectCycle(t *testing.T) {
	t.Run("empty graph has no cycle", func(t *testing.T) {
		cycle := DetectCycle(nil, edgesOf(nil))
		assert.Nil(t, cycle)
	})

	t.Run("nodes with no edges have no cycle", func(t *testing.T) {
		cycle := DetectCycle([]string{"a", "b", "c"}, edgesOf(nil))
		assert.Nil(t, cycle)
	})

	t.Run("valid dag has no cycle", func(t *testing.T) {
		graph := map[string][]string{
			"a": {"b", "c"},
			"b": {"c"},
			"c": {"d"},
		}
		cycle := DetectCycle([]string{"a", "b", "c", "d"}, edgesOf(graph))
		assert.Nil(t, cycle)
	})

	t.Run("direct cycle is found", func(t *testing.T) {
		graph := map[string][]string{
			"g1": {"g2"},
			"g2": {"g1"},
		}
		cycle := DetectCycle([]string{"g1", "g2"}, edgesOf(graph))
		assert.Contains(t, cycle, "g1")
		assert.Contains(t, cycle, "g2")
		assert.Equal(t, cycle[0], cycle[len(cycle)-1], "cycle path should start and end on the re-entered node")
	})

	t.Run("cycle in a disjoint component is found", func(t *testing.T) {
		graph := map[string][]string{
			"a": {"b"},
			"x": {"y"},
			"y": {"z"},
			"z": {"y"},
		}
		cycle := DetectCycle([]string{"a", "b", "x", "y", "z"}, edgesOf(graph))
		assert.NotNil(t, cycle)
		assert.Contains(t, cycle, "y")
		assert.Contains(t, cycle, "z")
	})
}

func TestFormatCycle(t *testing.T) {
	assert.Equal(t, "a->b->a", FormatCycle([]string{"a", "b", "a"}))
	assert.Equal(t, "", FormatCycle(nil))
}

func TestErrorFor(t *testing.T) {
	err := ErrorFor("gate", []string{"g1", "g2", "g1"})
	assert.ErrorContains(t, err, "gate")
	assert.ErrorContains(t, err, "g1->g2->g1")
	assert.True(t, errors.Is(err, merr.ErrCycle))
}
