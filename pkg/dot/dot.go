// Package dot writes and reads the minimal Graphviz subset used to exchange
// edge lists:
//
//	digraph G {
//	    size="12,12";
//	    "parent" -> "child";
//	}
package dot

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/l3aro/go-pygraph/pkg/graph"
)

// Write emits edges as a digraph. size, when non-empty, is written as the
// size directive (for example "12,12").
func Write(w io.Writer, edges []graph.Edge, size string) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("digraph G {\n")
	if size != "" {
		fmt.Fprintf(bw, "    size=\"%s\";\n", escape(size))
	}
	for _, e := range edges {
		fmt.Fprintf(bw, "    %s -> %s;\n", quote(e.From), quote(e.To))
	}
	bw.WriteString("}\n")

	return bw.Flush()
}

// WriteFile writes edges to path, replacing any existing file.
func WriteFile(path string, edges []graph.Edge, size string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, edges, size); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// LineError describes an edge line that was skipped.
type LineError struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Parse reads edges back. Blank lines, the header, the size directive and
// braces are accepted; other non-edge statements are ignored. A line
// containing "->" that does not split into exactly two names is reported and
// skipped. Only read failures are returned as an error.
func Parse(r io.Reader) ([]graph.Edge, []LineError, error) {
	var edges []graph.Edge
	var skipped []LineError

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if !strings.Contains(line, "->") {
			continue
		}

		parts := strings.Split(line, "->")
		if len(parts) != 2 {
			skipped = append(skipped, LineError{Line: lineNo, Text: line, Reason: "expected exactly one '->'"})
			continue
		}

		from := unquote(parts[0])
		to := unquote(parts[1])
		if from == "" || to == "" {
			skipped = append(skipped, LineError{Line: lineNo, Text: line, Reason: "empty node name"})
			continue
		}
		edges = append(edges, graph.Edge{From: from, To: to})
	}
	if err := sc.Err(); err != nil {
		return edges, skipped, fmt.Errorf("reading dot input: %w", err)
	}
	return edges, skipped, nil
}

// ParseFile parses the file at path.
func ParseFile(path string) ([]graph.Edge, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

func quote(s string) string {
	return `"` + escape(s) + `"`
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
		return strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\n`, "\n").Replace(s)
	}
	return strings.Trim(s, `"`)
}
