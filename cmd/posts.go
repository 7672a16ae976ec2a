package cmd

import (
	"fmt"
	"text/tabwriter"

	"PostGenius/models"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var postsStatus string

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List stored posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		posts, err := a.postSvc.List(cmd.Context())
		if err != nil {
			return err
		}

		loc := cfg.Location()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tSCHEDULED\tWHEN\tPAGE\tATTEMPTS")
		for _, p := range posts {
			if postsStatus != "" && string(p.Status) != postsStatus {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
				p.ID, p.Status, p.ScheduledAt.In(loc).Format("2006-01-02 15:04"),
				humanize.Time(p.ScheduledAt), p.PageName, p.Attempts)
		}
		return w.Flush()
	},
}

func init() {
	postsCmd.Flags().StringVar(&postsStatus, "status", "",
		fmt.Sprintf("only show posts with this status (%s, %s, %s)",
			models.StatusScheduled, models.StatusPaused, models.StatusPublished))
}
