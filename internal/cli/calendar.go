package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"todo-planner/internal/calendar"
)

const monthLayout = "2006-01"

func newCalendarCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show a month of due tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			ref := a.now().In(a.loc)
			if month != "" {
				parsed, err := time.ParseInLocation(monthLayout, month, a.loc)
				if err != nil {
					return fmt.Errorf("invalid month %q: use YYYY-MM", month)
				}
				ref = parsed
			}
			opts, err := a.gridOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("week-start") && a.weekStart != a.cfg.WeekStart {
				a.cfg.WeekStart = a.weekStart
				if err := a.save(); err != nil {
					return err
				}
			}

			// The server buckets days in UTC; widen the query so no local
			// day at the edges of the grid loses tasks.
			first, last := calendar.BuildMonthGrid(nil, ref, opts...).Range()
			tasks, err := a.client.CalendarTasks(cmd.Context(), first.AddDate(0, 0, -1), last.AddDate(0, 0, 1))
			if err != nil {
				return a.explain(err)
			}

			grid := calendar.BuildMonthGrid(tasks, ref, opts...)
			fmt.Fprintln(a.out, a.styles.renderCalendar(grid))
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month to show (YYYY-MM), current month by default")
	cmd.Flags().StringVar(&a.weekStart, "week-start", "", "first day of the week, saved for later runs")
	return cmd
}
