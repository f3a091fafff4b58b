package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/internal/importresolve"
	"github.com/btdsl/btdsl/pkg/btdsl"
)

var outputDir string

var buildCmd = &cobra.Command{
	Use:   "build <files...>",
	Short: "Compile BT-DSL AST documents to BehaviorTree.CPP XML",
	Long: `build runs the full middle-end — name resolution, constant evaluation,
type checking, recursion and data-flow safety checks — over one or more
AST JSON documents and lowers each to a BehaviorTree.CPP XML file.

Examples:
  # Compile a single module to its own document
  btdsl build robot.ast.json

  # Walk SubTree calls across modules into one document
  btdsl build main.ast.json --single-output --entry Main`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: alongside each input file)")
}

func runBuild(_ *cobra.Command, args []string) error {
	logger.Debug("build starting", "files", args, "singleOutput", singleOutput, "entry", entryTree)

	result, bag := btdsl.Compile(args, btdsl.Options{
		SingleOutput: singleOutput,
		EntryTree:    entryTree,
		PackagePaths: packagePaths,
	})

	if bag.Len() > 0 {
		fmt.Fprintln(os.Stderr, diag.Render("", bag, nil, !color.NoColor))
	}
	if bag.HasErrors() {
		return fmt.Errorf("build failed with %d diagnostic(s)", bag.Len())
	}

	for _, file := range args {
		xml, ok := result.Artifacts[file]
		if !ok {
			continue
		}
		out := outputPath(file)
		if err := os.WriteFile(out, []byte(xml), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Printf("%s -> %s\n", file, out)
	}
	return nil
}

// outputPath replaces the required importresolve.SourceExt suffix with
// .xml, or just appends it when the input doesn't carry that suffix,
// honoring --output as a destination directory when set.
func outputPath(input string) string {
	base := filepath.Base(input)
	if strings.HasSuffix(base, importresolve.SourceExt) {
		base = strings.TrimSuffix(base, importresolve.SourceExt) + ".xml"
	} else {
		base += ".xml"
	}
	dir := filepath.Dir(input)
	if outputDir != "" {
		dir = outputDir
	}
	return filepath.Join(dir, base)
}
