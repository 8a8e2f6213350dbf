package commands

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/l3aro/go-pygraph/internal/scanner"
	"github.com/spf13/cobra"
)

// TreeNode represents a node in the source tree for JSON output
type TreeNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Type     string      `json:"type"` // "file" or "directory"
	Size     int64       `json:"size,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources [path]",
	Short: "List the Python files that would be analyzed",
	Long: `Shows the Python sources found under path as a tree. Virtual environments,
hidden directories, default excludes and .pygignore patterns are skipped the
same way the graph commands skip them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			cfg.SourceRoot = args[0]
		}

		absPath, err := filepath.Abs(cfg.SourceRoot)
		if err != nil {
			return fmt.Errorf("getting absolute path: %w", err)
		}

		files, err := scanner.Scan(absPath)
		if err != nil {
			return fmt.Errorf("scanning directory: %w", err)
		}

		tree := buildTree(absPath, files)
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(tree)
		}
		fmt.Println(headerStyle.Render(absPath))
		printTree(tree, "")
		fmt.Printf("\n%d python files\n", len(files))
		return nil
	},
}

func init() {
	sourcesCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(sourcesCmd)
}

// buildTree builds a tree structure from file list
func buildTree(root string, files []scanner.FileInfo) *TreeNode {
	rootNode := &TreeNode{
		Name: filepath.Base(root),
		Path: root,
		Type: "directory",
	}
	dirs := make(map[string]*TreeNode)

	for _, file := range files {
		parts := strings.Split(filepath.ToSlash(file.Path), "/")
		current := rootNode

		for i, part := range parts {
			if i == len(parts)-1 {
				current.Children = append(current.Children, &TreeNode{
					Name: part,
					Path: file.FullPath,
					Type: "file",
					Size: file.Size,
				})
				break
			}

			key := strings.Join(parts[:i+1], "/")
			child, ok := dirs[key]
			if !ok {
				child = &TreeNode{
					Name: part,
					Path: filepath.Join(root, filepath.FromSlash(key)),
					Type: "directory",
				}
				current.Children = append(current.Children, child)
				dirs[key] = child
			}
			current = child
		}
	}

	sortTree(rootNode)
	return rootNode
}

// sortTree sorts tree nodes (directories first, then alphabetically)
func sortTree(node *TreeNode) {
	sort.Slice(node.Children, func(i, j int) bool {
		if node.Children[i].Type != node.Children[j].Type {
			return node.Children[i].Type == "directory"
		}
		return node.Children[i].Name < node.Children[j].Name
	})
	for _, child := range node.Children {
		if child.Type == "directory" {
			sortTree(child)
		}
	}
}

func printTree(node *TreeNode, prefix string) {
	for i, child := range node.Children {
		last := i == len(node.Children)-1
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}

		if child.Type == "directory" {
			fmt.Printf("%s%s%s/\n", prefix, connector, child.Name)
			printTree(child, prefix+indent)
			continue
		}
		fmt.Printf("%s%s%s\n", prefix, connector, child.Name)
	}
}
