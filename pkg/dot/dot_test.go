package dot

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/go-pygraph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	edges := []graph.Edge{{From: "sci", To: "gca"}, {From: "gca", To: "gcf"}}
	require.NoError(t, Write(&buf, edges, "12,12"))

	want := "digraph G {\n" +
		"    size=\"12,12\";\n" +
		"    \"sci\" -> \"gca\";\n" +
		"    \"gca\" -> \"gcf\";\n" +
		"}\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, nil, ""))
	assert.Equal(t, "digraph G {\n}\n", buf.String())
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		edges []graph.Edge
	}{
		{"single", []graph.Edge{{From: "X", To: "Y"}}},
		{"methods", []graph.Edge{{From: "Figure", To: "Figure.savefig"}, {From: "Figure", To: "Figure.gca"}}},
		{"quoted names", []graph.Edge{{From: `say "hi"`, To: `back\slash`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "graph.dot")
			require.NoError(t, WriteFile(path, tt.edges, "8,8"))

			edges, skipped, err := ParseFile(path)
			require.NoError(t, err)
			assert.Empty(t, skipped)
			assert.Equal(t, tt.edges, edges)
		})
	}
}

func TestParseTolerance(t *testing.T) {
	input := `digraph G {

    size="12,12";
    node [shape=box];
    "A" -> "B";
    "X" -> "Y" -> "Z";
    C -> D
    "E" -> ;

}
`
	edges, skipped, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []graph.Edge{{From: "A", To: "B"}, {From: "C", To: "D"}}, edges)
	require.Len(t, skipped, 2)
	assert.Equal(t, 6, skipped[0].Line)
	assert.Equal(t, `"X" -> "Y" -> "Z";`, skipped[0].Text)
	assert.Equal(t, 8, skipped[1].Line)
	assert.Contains(t, skipped[0].Error(), "line 6")
}

func TestParseFileMissing(t *testing.T) {
	_, _, err := ParseFile(filepath.Join(t.TempDir(), "nope.dot"))
	assert.Error(t, err)
}
