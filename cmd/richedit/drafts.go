package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List, show and delete saved drafts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openDrafts()
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, d := range list {
			pending := ""
			if d.Pending > 0 {
				pending = color.YellowString("%d pending", d.Pending)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Updated.Local().Format("2006-01-02 15:04"), d.Title, pending)
		}
		return tw.Flush()
	},
}

var draftsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a draft's markup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDrafts()
		if err != nil {
			return err
		}
		defer store.Close()

		d, doc, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, em := range doc.PendingEmbeds() {
			log.Warn("embed not uploaded yet", "embed", em.ID, "file", em.File)
		}
		fmt.Fprintln(cmd.OutOrStdout(), d.Markup)
		return nil
	},
}

var draftsRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete drafts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDrafts()
		if err != nil {
			return err
		}
		defer store.Close()

		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	draftsCmd.AddCommand(draftsListCmd, draftsShowCmd, draftsRmCmd)
}
