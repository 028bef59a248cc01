package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"richedit/drafts"
	"richedit/editor"
	"richedit/media"
)

var applyCmd = &cobra.Command{
	Use:   "apply <script>",
	Short: "Replay an editing script against a document",
	Long: `Replay an editing script against a document and print the resulting markup.

Each script line is a verb followed by its argument:

  select 0:2 0:7        select from block 0 offset 2 to offset 7 ("all" selects everything)
  type Hello\nworld     type text, \n starts a new block
  key ctrl+b            press a key chord; "key ctrl+k https://x" answers the link prompt
  image photo.png       insert an image from a file or URL
  video https://youtu.be/abc
  wait                  wait for uploads started so far
  formatBlock h2        any editor command with an optional argument

The document starts from --in markup, a saved draft, or empty.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().String("in", "", "initial markup file")
	applyCmd.Flags().StringP("out", "o", "", "write markup to file instead of stdout")
	applyCmd.Flags().String("draft", "", "load and save the document as this draft")
	applyCmd.Flags().Bool("no-autosave", false, "only save the draft once the script finished")
	applyCmd.Flags().Bool("state", false, "print active formats after the script")
}

func runApply(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")
	draftID, _ := cmd.Flags().GetString("draft")
	noAutosave, _ := cmd.Flags().GetBool("no-autosave")
	showState, _ := cmd.Flags().GetBool("state")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening script: %w", err)
	}
	steps, err := parseScript(f)
	f.Close()
	if err != nil {
		return err
	}

	r := &replayer{}
	e, err := newEditor(func(err error) {
		log.Error("upload failed", "err", err)
	}, r.prompt)
	if err != nil {
		return err
	}
	defer e.Close()
	r.ed = e

	if in != "" {
		markup, err := readInput(in)
		if err != nil {
			return err
		}
		if err := e.SetMarkup(markup); err != nil {
			log.Warn("initial markup replaced by empty document", "err", err)
		}
	}

	var store *drafts.Store
	if draftID != "" {
		if store, err = openDrafts(); err != nil {
			return err
		}
		defer store.Close()
		if in == "" {
			switch _, d, err := store.Load(ctx, draftID); {
			case err == nil:
				e.Load(d)
				retryPending(e)
			case !errors.Is(err, drafts.ErrNotFound):
				return err
			}
		}
		if cfg.Drafts.Autosave && !noAutosave {
			store.Autosave(ctx, draftID, e, log, nil)
		}
	}

	if err := r.run(steps); err != nil {
		return err
	}
	if err := e.Wait(); err != nil {
		log.Warn("uploads failed", "err", err)
	}
	for _, em := range e.PendingEmbeds() {
		log.Warn("embed still pending, left out of markup", "embed", em.ID, "file", em.File)
	}

	if store != nil {
		if err := store.Save(ctx, draftID, e.Document()); err != nil {
			return err
		}
		log.Info("draft saved", "draft", draftID, "durable", e.Durable())
	}
	if err := writeOutput(out, e.Markup()); err != nil {
		return err
	}
	if showState {
		printState(cmd.OutOrStdout(), e.State())
	}
	return nil
}

// retryPending restarts the uploads a reopened draft left pending.
func retryPending(e *editor.Editor) {
	for _, em := range e.PendingEmbeds() {
		if err := e.RetryUpload(em.ID); err != nil {
			log.Warn("pending embed not retried", "embed", em.ID, "file", em.File, "err", err)
			continue
		}
		log.Info("retrying upload", "embed", em.ID, "file", em.File)
	}
}

// replayer executes script steps against an editor.
type replayer struct {
	ed   *editor.Editor
	link string // answer for the next link prompt
}

func (r *replayer) prompt() (string, bool) {
	l := r.link
	r.link = ""
	return l, l != ""
}

func (r *replayer) run(steps []step) error {
	for _, s := range steps {
		if err := r.step(s); err != nil {
			return fmt.Errorf("line %d: %s: %w", s.line, s.verb, err)
		}
	}
	return nil
}

func (r *replayer) step(s step) error {
	switch s.verb {
	case "select":
		sel, err := parseSelection(r.ed.Document(), s.arg)
		if err != nil {
			return err
		}
		r.ed.Select(sel)
		return nil
	case "type":
		return r.ed.Type(s.arg)
	case "key":
		chord, link, _ := strings.Cut(s.arg, " ")
		r.link = strings.TrimSpace(link)
		handled, err := r.ed.HandleKey(chord)
		if err != nil {
			return err
		}
		if !handled {
			return fmt.Errorf("no binding for %q", chord)
		}
		return nil
	case "image", "video":
		src, err := mediaSource(s.arg)
		if err != nil {
			return err
		}
		if s.verb == "image" {
			return r.ed.InsertImage(src)
		}
		return r.ed.InsertVideo(src)
	case "wait":
		return r.ed.Wait()
	}
	if s.arg == "" {
		return r.ed.Execute(s.verb)
	}
	return r.ed.Execute(s.verb, s.arg)
}

// mediaSource treats http(s) arguments as URLs and anything else as a
// local file.
func mediaSource(arg string) (media.Source, error) {
	if arg == "" {
		return media.Source{}, editor.ErrMissingArgument
	}
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return media.FromURL(arg), nil
	}
	f, err := media.FileFromPath(arg)
	if err != nil {
		return media.Source{}, err
	}
	return media.FromFile(f), nil
}
