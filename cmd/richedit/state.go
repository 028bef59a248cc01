package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"richedit/format"
)

var stateCmd = &cobra.Command{
	Use:   "state [file]",
	Short: "Show the formats a toolbar would display for a selection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runState,
}

func init() {
	stateCmd.Flags().String("select", "0:0", `selection as "B:O", "B:O B:O" or "all"`)
}

var (
	activeColor   = color.New(color.FgGreen, color.Bold)
	inactiveColor = color.New(color.Faint)
	labelColor    = color.New(color.FgCyan)
)

func runState(cmd *cobra.Command, args []string) error {
	in := ""
	if len(args) > 0 {
		in = args[0]
	}
	selArg, _ := cmd.Flags().GetString("select")

	markup, err := readInput(in)
	if err != nil {
		return err
	}
	e, err := newEditor(nil, nil)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.SetMarkup(markup); err != nil {
		return err
	}
	sel, err := parseSelection(e.Document(), selArg)
	if err != nil {
		return err
	}
	e.Select(sel)
	printState(cmd.OutOrStdout(), e.State())
	return nil
}

// printState renders st the way a toolbar shows it: toggles lit when
// active, the block format and the font size picked from the configured
// sizes.
func printState(w io.Writer, st format.State) {
	toggle := func(name string, on bool) {
		if on {
			activeColor.Fprint(w, name)
		} else {
			inactiveColor.Fprint(w, name)
		}
		fmt.Fprint(w, " ")
	}
	label := func(name string) { labelColor.Fprintf(w, "%-11s", name) }

	label("format")
	toggle("bold", st.Bold)
	toggle("italic", st.Italic)
	toggle("underline", st.Underline)
	toggle("quote", st.Blockquote)
	fmt.Fprintln(w)

	label("block")
	fmt.Fprintln(w, blockName(st))

	label("align")
	for _, a := range []string{"left", "center", "right"} {
		toggle(a, st.Align.String() == a)
	}
	fmt.Fprintln(w)

	label("list")
	toggle("bullets", st.InList && st.List.String() == "unordered")
	toggle("numbers", st.InList && st.List.String() == "ordered")
	fmt.Fprintln(w)

	label("size")
	sizes := cfg.Editor.FontSizes
	for _, s := range sizes {
		toggle(s, s == st.FontSize)
	}
	if st.FontSize != "" && !contains(sizes, st.FontSize) {
		activeColor.Fprint(w, st.FontSize)
	}
	fmt.Fprintln(w)

	for _, kv := range [][2]string{{"color", st.Color}, {"background", st.Background}, {"link", st.Link}} {
		if kv[1] == "" {
			continue
		}
		label(kv[0])
		fmt.Fprintln(w, kv[1])
	}
}

func blockName(st format.State) string {
	switch {
	case st.Heading > 0:
		return "Heading " + strconv.Itoa(st.Heading)
	case st.InList:
		return "List item"
	case st.Blockquote:
		return "Quote"
	}
	return "Paragraph"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
