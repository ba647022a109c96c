package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modlink/internal/surfacefmt"
)

var surfaceCmd = &cobra.Command{
	Use:   "surface [flags] [file.vy]",
	Short: "Print the external surface of a contract",
	Long:  `Surface checks the contract like check does and prints its callable methods, selectors and access grants`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSurface,
}

func init() {
	surfaceCmd.Flags().String("format", "table", "output format (table|json|yaml)")
	surfaceCmd.Flags().Bool("all", false, "print every module of the program, dependencies first")
	surfaceCmd.Flags().Bool("with-notes", true, "include diagnostic notes when the check fails")
	surfaceCmd.Flags().Bool("fullpath", false, "emit absolute file paths in diagnostics")
}

func runSurface(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to get all flag: %w", err)
	}
	_, res, err := compileTarget(cmd, args)
	if err != nil {
		return err
	}
	if !res.OK() {
		if err := writeDiagnostics(cmd, cmd.ErrOrStderr(), res, "pretty"); err != nil {
			return err
		}
		return errDiagnostics
	}

	var docs []surfacefmt.Document
	if all {
		for _, id := range res.Order {
			if s := res.Surfaces.Surface(id); s != nil {
				docs = append(docs, surfacefmt.Build(res.Arena, s))
			}
		}
	} else {
		docs = append(docs, surfacefmt.Build(res.Arena, res.MainSurface()))
	}

	out := cmd.OutOrStdout()
	switch format {
	case "table":
		color, err := useColor(cmd)
		if err != nil {
			return err
		}
		return surfacefmt.Table(out, docs, surfacefmt.TableOpts{Color: color})
	case "json":
		return surfacefmt.JSON(out, docs)
	case "yaml":
		return surfacefmt.YAML(out, docs)
	}
	return fmt.Errorf("unknown format: %s", format)
}
