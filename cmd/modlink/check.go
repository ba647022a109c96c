package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"modlink/internal/diagfmt"
	"modlink/internal/driver"
	"modlink/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.vy]",
	Short: "Check module composition of a contract and everything it imports",
	Long: `Check loads the entry contract (the file argument or [project].main of modlink.toml),
resolves its imports, exports and uses/initializes grants and reports every problem found`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "sarif", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	_, res, err := compileTarget(cmd, args)
	if err != nil {
		return err
	}
	if err := writeDiagnostics(cmd, cmd.OutOrStdout(), res, format); err != nil {
		return err
	}
	if !res.OK() {
		return errDiagnostics
	}
	if format == "pretty" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d modules)\n", res.Main, len(res.Order))
	}
	return nil
}

func writeDiagnostics(cmd *cobra.Command, w io.Writer, res *driver.Result, format string) error {
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch format {
	case "pretty":
		if !res.Bag.HasErrors() {
			return nil
		}
		color, err := useColor(cmd)
		if err != nil {
			return err
		}
		return diagfmt.Pretty(w, res.Bag, res.FileSet, diagfmt.PrettyOpts{Color: color, PathMode: pathMode, ShowNotes: withNotes})
	case "short":
		return diagfmt.Short(w, res.Bag, res.FileSet, withNotes)
	case "json":
		return diagfmt.JSON(w, res.Bag, res.FileSet, diagfmt.JSONOpts{PathMode: pathMode, IncludeNotes: withNotes})
	case "sarif":
		return diagfmt.Sarif(w, res.Bag, res.FileSet, diagfmt.SarifRunMeta{ToolName: "modlink", ToolVersion: version.Version})
	}
	return fmt.Errorf("unknown format: %s", format)
}
