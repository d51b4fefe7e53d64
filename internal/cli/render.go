package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mfekih/jobtrack/internal/model"
)

func renderPage(out io.Writer, page *model.Page, items []model.JobApplication, status model.Status) {
	fmt.Fprintf(out, "\n%s — %d application(s), page %d of %d\n\n",
		status, page.Total, page.Page, page.TotalPages)

	if len(items) == 0 {
		fmt.Fprintln(out, "  No applications in this status. Add one to get started.")
		return
	}

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  #\tCOMPANY\tTITLE\tDATE\tINTERVIEW\tLINK")
	for i, app := range items {
		interview := "no"
		if app.HadInterview {
			interview = "yes"
		}
		link := app.Link
		if link == "" {
			link = "-"
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, app.Company, app.JobTitle, app.ApplicationDate, interview, link)
	}
	w.Flush()
}

func renderStats(out io.Writer, stats *model.Stats) {
	fmt.Fprintf(out, "\nTotal applications: %d\n", stats.TotalApplications())
	fmt.Fprintf(out, "Interviews: %d (rate %.0f%%)\n", stats.InterviewTotal, stats.InterviewRate*100)
	fmt.Fprintf(out, "Average per month: %.1f\n\n", stats.AveragePerMonth)

	if len(stats.ByStatus) > 0 {
		for _, status := range model.Statuses {
			if n, ok := stats.ByStatus[string(status)]; ok {
				fmt.Fprintf(out, "  %-10s %d\n", status, n)
			}
		}
		fmt.Fprintln(out)
	}

	if len(stats.ByMonth) > 0 {
		max := 0
		for _, mc := range stats.ByMonth {
			if mc.Count > max {
				max = mc.Count
			}
		}
		for _, mc := range stats.ByMonth {
			bar := ""
			if max > 0 {
				bar = strings.Repeat("#", mc.Count*24/max)
			}
			fmt.Fprintf(out, "  %s %-24s %d\n", mc.Month, bar, mc.Count)
		}
		fmt.Fprintln(out)
	}
}

func renderMessages(out io.Writer, messages []string) {
	for _, msg := range messages {
		fmt.Fprintf(out, "  ! %s\n", msg)
	}
}
