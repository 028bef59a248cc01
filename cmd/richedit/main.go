// Command richedit drives the editing engine headlessly: it renders and
// normalizes markup, replays command scripts and manages saved drafts.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"richedit/config"
	"richedit/drafts"
	"richedit/editor"
	"richedit/media"
	"richedit/upload"
)

var rootCmd = &cobra.Command{
	Use:               "richedit",
	Short:             "Headless rich-text editing engine",
	Long:              `richedit edits HTML documents through the same commands a toolbar or keyboard would issue.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Set by setup before any command runs.
var (
	cfg *config.Config
	log *slog.Logger
)

func main() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(initConfigCmd)

	rootCmd.PersistentFlags().String("config", "", "config file (default ~/.config/richedit/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "override the configured log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	var err error
	if path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFile(path)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(log)
	return nil
}

// newEditor builds an editor from the loaded configuration.
func newEditor(onErr func(error), prompt func() (string, bool)) (*editor.Editor, error) {
	up, err := uploader(cfg.Upload)
	if err != nil {
		return nil, err
	}
	keys := editor.DefaultKeys()
	for chord, line := range cfg.Keybindings.Keys() {
		keys[chord] = line
	}
	return editor.New(editor.Options{
		Media: media.Options{
			Uploader:   up,
			Folder:     cfg.Media.Folder,
			Tags:       cfg.Media.Tags,
			ImageTypes: cfg.Media.ImageTypes,
			VideoTypes: cfg.Media.VideoTypes,
			MaxBytes:   cfg.Media.MaxBytes,
		},
		DefaultFontSize: cfg.Editor.DefaultFontSize,
		HistoryLimit:    cfg.Editor.HistoryLimit,
		Keys:            keys,
		OnError:         onErr,
		PromptLink:      prompt,
		Logger:          log,
	}), nil
}

// uploader picks the HTTP service when an endpoint is configured, then a
// local directory. Without either, files stay pending.
func uploader(u config.Upload) (media.Uploader, error) {
	switch {
	case u.Endpoint != "":
		return upload.NewHTTP(upload.Options{
			Endpoint:       u.Endpoint,
			Preset:         u.Preset,
			UserAgent:      u.UserAgent,
			TimeoutSeconds: u.TimeoutSeconds,
			Retries:        upload.DefaultOptions().Retries,
			Backoff:        upload.DefaultOptions().Backoff,
		})
	case u.Dir != "":
		return upload.Dir{Root: u.Dir, BaseURL: u.BaseURL}, nil
	}
	return nil, nil
}

func openDrafts() (*drafts.Store, error) {
	path, err := cfg.DraftsPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating drafts dir: %w", err)
	}
	return drafts.Open(path)
}

// readInput reads a file, or stdin for "" and "-".
func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

func writeOutput(path, markup string) error {
	if path == "" || path == "-" {
		_, err := fmt.Println(markup)
		return err
	}
	return os.WriteFile(path, []byte(markup+"\n"), 0o644)
}
