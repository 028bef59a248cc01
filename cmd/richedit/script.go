package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"richedit/document"
)

var errBadPosition = errors.New("bad position")

// step is one line of an apply script.
type step struct {
	line int
	verb string
	arg  string
}

// parseScript reads one step per line. Blank lines and lines starting
// with # are skipped. The verb is the first word; the rest of the line is
// its argument, with \n standing for a line break.
func parseScript(r io.Reader) ([]step, error) {
	var steps []step
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		verb, arg, _ := strings.Cut(line, " ")
		arg = strings.ReplaceAll(strings.TrimSpace(arg), `\n`, "\n")
		steps = append(steps, step{line: n, verb: verb, arg: arg})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return steps, nil
}

// parseSelection reads "all", "B:O" for a caret or "B:O B:O" for anchor
// and focus. B indexes the document's blocks in order, list items
// included; O is the offset inside that block.
func parseSelection(d *document.Document, s string) (document.Selection, error) {
	fields := strings.Fields(s)
	switch {
	case len(fields) == 1 && fields[0] == "all":
		return d.SelectAll(), nil
	case len(fields) == 1:
		p, err := parsePosition(d, fields[0])
		return document.Caret(p), err
	case len(fields) == 2:
		a, err := parsePosition(d, fields[0])
		if err != nil {
			return document.Selection{}, err
		}
		f, err := parsePosition(d, fields[1])
		return document.Selection{Anchor: a, Focus: f}, err
	}
	return document.Selection{}, fmt.Errorf("%w: %q", errBadPosition, s)
}

func parsePosition(d *document.Document, s string) (document.Position, error) {
	bs, offs, ok := strings.Cut(s, ":")
	if !ok {
		offs = "0"
	}
	bi, err := strconv.Atoi(bs)
	if err != nil {
		return document.Position{}, fmt.Errorf("%w: %q", errBadPosition, s)
	}
	off, err := strconv.Atoi(offs)
	if err != nil || off < 0 {
		return document.Position{}, fmt.Errorf("%w: %q", errBadPosition, s)
	}
	blocks := d.Blocks()
	if bi < 0 {
		bi += len(blocks)
	}
	if bi < 0 || bi >= len(blocks) {
		return document.Position{}, fmt.Errorf("%w: block %d of %d", errBadPosition, bi, len(blocks))
	}
	b := blocks[bi]
	return document.Position{Block: b.ID, Offset: min(off, b.Len())}, nil
}
