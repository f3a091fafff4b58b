package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/btdsl/btdsl/internal/diag"
	"github.com/btdsl/btdsl/pkg/btdsl"
)

var checkCmd = &cobra.Command{
	Use:   "check <files...>",
	Short: "Report diagnostics without emitting XML",
	Long: `check runs the same middle-end as build — name resolution, constant
evaluation, type checking, recursion and data-flow safety — but never lowers
to XML. It exits 0 iff the resulting diagnostic bag contains no error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	logger.Debug("check starting", "files", args)

	_, bag := btdsl.Compile(args, btdsl.Options{
		EntryTree:    entryTree,
		PackagePaths: packagePaths,
	})

	if bag.Len() > 0 {
		fmt.Fprintln(os.Stderr, diag.Render("", bag, nil, !color.NoColor))
	}
	if bag.HasErrors() {
		return fmt.Errorf("check found %d diagnostic(s)", bag.Len())
	}
	fmt.Println("ok")
	return nil
}
