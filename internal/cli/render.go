package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/waterkeeper/internal/models"
	"github.com/dmitrijs2005/waterkeeper/internal/views"
)

const barWidth = 30

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func liters(v float64) string {
	return fmt.Sprintf("%.1f L", v)
}

// renderSeries draws a horizontal bar chart scaled to the largest value.
func renderSeries(w io.Writer, s views.Series) {
	fmt.Fprintf(w, "%s\n", s.Label)

	var top float64
	for _, v := range s.Values {
		if v > top {
			top = v
		}
	}

	tw := newTable(w)
	for i, label := range s.Labels {
		n := 0
		if top > 0 {
			n = int(s.Values[i] / top * barWidth)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", label, strings.Repeat("#", n), liters(s.Values[i]))
	}
	tw.Flush()
}

var emptyRanking = map[models.Window]string{
	models.WindowDaily:    "No data today",
	models.WindowWeekly:   "No data this week",
	models.WindowLifetime: "No users yet",
}

var rankingTitle = map[models.Window]string{
	models.WindowDaily:    "Today's leaders",
	models.WindowWeekly:   "This week's leaders",
	models.WindowLifetime: "All-time leaders",
}

func renderRanking(w io.Writer, window models.Window, rows []views.RankRow) {
	fmt.Fprintf(w, "%s\n", rankingTitle[window])
	if len(rows) == 0 {
		fmt.Fprintf(w, "  %s\n", emptyRanking[window])
		return
	}

	tw := newTable(w)
	for _, r := range rows {
		fmt.Fprintf(tw, "  #%d %s\t%s\n", r.Rank, r.Name, liters(r.Total))
	}
	tw.Flush()
}

func renderDashboard(w io.Writer, d views.Dashboard) {
	p := d.Profile
	fmt.Fprintf(w, "%s\n", p.Name)
	fmt.Fprintf(w, "ID: %s | Loc: %s\n", p.ID, p.Loc)
	fmt.Fprintf(w, "Today: %s\n", liters(p.Today))
	fmt.Fprintf(w, "Lifetime: %s\n\n", liters(p.Lifetime))

	renderSeries(w, d.Comparison)
	fmt.Fprintln(w)
	renderRanking(w, models.WindowDaily, d.Daily)
	renderRanking(w, models.WindowWeekly, d.Weekly)
}

func renderAllUsers(w io.Writer, page views.AllUsersPage) {
	if len(page.Rows) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}

	tw := newTable(w)
	for _, r := range page.Rows {
		fmt.Fprintf(tw, "#%d %s\tTotal: %s\n", r.Rank, r.Name, liters(r.Total))
	}
	tw.Flush()

	fmt.Fprintln(w)
	renderSeries(w, page.Chart)
}

func renderAdminOverview(w io.Writer, ov views.AdminOverview) {
	fmt.Fprintf(w, "Total users: %d\n", ov.Count)
	if ov.Count == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPASSWORD\tNAME\tSEX\tLOCATION\tTOTAL")
	for _, r := range ov.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Pass, r.Name, r.Sex, r.Loc, liters(r.Lifetime))
	}
	tw.Flush()

	fmt.Fprintln(w)
	renderSeries(w, ov.Chart)
}
