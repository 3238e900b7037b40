package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/settler/cmd"
	"github.com/thoreinstein/settler/internal/errors"
)

var (
	genDocOut    string
	genDocFormat string
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate reference documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runGenDoc(genDocOut, genDocFormat)
	},
}

func init() {
	genDocCmd.Flags().StringVarP(&genDocOut, "out", "o", "", "output directory for documentation")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "documentation format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

func runGenDoc(outputDir, format string) error {
	if outputDir == "" {
		return errors.NewUserError(errors.New("output directory is required"), "Pass --out <dir>")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	rootCmd.DisableAutoGenTag = true

	var err error
	switch format {
	case "markdown", "md":
		err = doc.GenMarkdownTreeCustom(rootCmd, outputDir, filePrepender, linkHandler)
	case "man":
		err = doc.GenManTree(rootCmd, &doc.GenManHeader{
			Title:   "SETTLER",
			Section: "1",
			Source:  "settler " + cmd.Version,
		}, outputDir)
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", format), "Use --format markdown or --format man")
	}
	if err != nil {
		return errors.Wrapf(err, "generating %s", format)
	}

	fmt.Printf("Documentation generated in %s\n", outputDir)
	return nil
}

func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	// settler_backup_list.md -> settler backup list
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s"
---
`, title, title)
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "/docs/reference/" + strings.ToLower(base) + "/"
}
