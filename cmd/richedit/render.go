package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"richedit/document"
	"richedit/html"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Parse markup and print it in normalized form",
	Long: `Parse HTML markup from a file (or stdin) into a document and render it
back. Unsupported elements are dropped, nested lists are flattened and text
is NFC-normalized.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("out", "o", "", "write to file instead of stdout")
	renderCmd.Flags().Bool("strict", false, "fail on malformed markup instead of printing an empty document")
}

func runRender(cmd *cobra.Command, args []string) error {
	in := ""
	if len(args) > 0 {
		in = args[0]
	}
	out, _ := cmd.Flags().GetString("out")
	strict, _ := cmd.Flags().GetBool("strict")

	markup, err := readInput(in)
	if err != nil {
		return err
	}
	d, err := html.ParseString(markup)
	if err != nil {
		if strict || !errors.Is(err, html.ErrMalformedMarkup) {
			return fmt.Errorf("parsing markup: %w", err)
		}
		log.Warn("malformed markup, rendering empty document", "err", err)
		d = document.New()
	}
	return writeOutput(out, html.Render(d))
}
