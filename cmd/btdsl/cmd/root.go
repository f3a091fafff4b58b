package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose      bool
	packagePaths []string
	singleOutput bool
	entryTree    string

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "btdsl",
	Short: "BT-DSL behavior tree compiler",
	Long: `btdsl compiles the BT-DSL behavior-tree language to BehaviorTree.CPP
XML, type-checking and data-flow-analyzing each tree before lowering it.

Lexing and parsing happen upstream of this tool: btdsl consumes the AST
JSON an upstream collaborator already built from BT-DSL source, not BT-DSL
source text directly.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringSliceVar(&packagePaths, "package-path", nil, "directory searched for bt-dsl-pkg:// imports (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&singleOutput, "single-output", false, "walk SubTree calls transitively across modules into one document")
	rootCmd.PersistentFlags().StringVar(&entryTree, "entry", "", "entry tree name (default: first public tree)")

	cobra.OnInitialize(initLogger)
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
