package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"todo-planner/internal/client"
	"todo-planner/internal/model"
)

// minRefLen is the shortest id prefix accepted as a task reference.
const minRefLen = 4

type taskFlags struct {
	title       string
	description string
	due         string
	repeat      string
	until       string
}

func (f *taskFlags) register(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVarP(&f.title, "title", "t", "", "new title")
	}
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "description")
	cmd.Flags().StringVar(&f.due, "due", "", `due date: "today", "tomorrow", YYYY-MM-DD or "YYYY-MM-DD HH:MM"`)
	cmd.Flags().StringVar(&f.repeat, "repeat", "", "repeat the task: daily, weekly or monthly")
	cmd.Flags().StringVar(&f.until, "until", "", "last day of the repetition (YYYY-MM-DD)")
}

func newTasksCmd(a *app) *cobra.Command {
	var openOnly, doneOnly bool
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"ls"},
		Short:   "List your tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := a.fetch(cmd.Context())
			if err != nil {
				return err
			}
			filtered := tasks[:0:0]
			for _, task := range tasks {
				if (openOnly && task.IsCompleted) || (doneOnly && !task.IsCompleted) {
					continue
				}
				filtered = append(filtered, task)
			}
			fmt.Fprintln(a.out, a.styles.renderTaskList(filtered, a.now()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&openOnly, "open", false, "only open tasks")
	cmd.Flags().BoolVar(&doneOnly, "done", false, "only completed tasks")
	cmd.MarkFlagsMutuallyExclusive("open", "done")

	cmd.AddCommand(
		newAddCmd(a),
		newShowCmd(a),
		newEditCmd(a),
		newDoneCmd(a),
		newRemoveCmd(a),
	)
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			in := model.CreateTaskInput{Title: strings.Join(args, " ")}
			if flags.description != "" {
				in.Description = &flags.description
			}
			var err error
			if in.DueDate, err = a.parseDue(flags.due); err != nil {
				return err
			}
			if in.RecurrencePattern, err = parseRepeat(flags.repeat); err != nil {
				return err
			}
			if in.RecurrenceEndDate, err = a.parseDue(flags.until); err != nil {
				return err
			}

			task, err := a.store.Create(cmd.Context(), in)
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintln(a.out, "Task saved.")
			fmt.Fprintln(a.out, a.styles.renderTaskDetails(task, a.now()))
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.store.Select(task.ID)
			fmt.Fprintln(a.out, a.styles.renderTaskDetails(task, a.now()))
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Long: `Change fields of a task. Only the flags you pass are sent; an empty
--description clears the description.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var in model.UpdateTaskInput
			changed := cmd.Flags().Changed
			if changed("title") {
				in.Title = &flags.title
			}
			if changed("description") {
				in.Description = &flags.description
			}
			if changed("due") {
				if in.DueDate, err = a.parseDue(flags.due); err != nil {
					return err
				}
			}
			if changed("repeat") {
				if in.RecurrencePattern, err = parseRepeat(flags.repeat); err != nil {
					return err
				}
			}
			if changed("until") {
				if in.RecurrenceEndDate, err = a.parseDue(flags.until); err != nil {
					return err
				}
				if in.RecurrencePattern == nil {
					in.RecurrencePattern = task.RecurrencePattern
				}
			}
			if in.Empty() {
				return fmt.Errorf("nothing to change: pass at least one of --title, --description, --due, --repeat or --until")
			}

			updated, err := a.store.Update(cmd.Context(), task.ID, in)
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintln(a.out, "Task updated.")
			fmt.Fprintln(a.out, a.styles.renderTaskDetails(updated, a.now()))
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Mark a task done, or open again",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			toggled, err := a.store.ToggleCompletion(cmd.Context(), task.ID)
			if err != nil {
				return a.explain(err)
			}
			if toggled.IsCompleted {
				fmt.Fprintf(a.out, "Done: %s\n", a.styles.title.Render(toggled.Title))
			} else {
				fmt.Fprintf(a.out, "Open again: %s\n", a.styles.title.Render(toggled.Title))
			}
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !yes {
				answer, err := a.prompt(fmt.Sprintf("Delete %q? [y/N]: ", task.Title))
				if err != nil {
					return err
				}
				if reply := strings.ToLower(strings.TrimSpace(answer)); reply != "y" && reply != "yes" {
					fmt.Fprintln(a.out, "Kept the task.")
					return nil
				}
			}
			if err := a.store.Delete(cmd.Context(), task.ID); err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "Deleted %s.\n", a.styles.title.Render(task.Title))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// fetch loads the task list into the store.
func (a *app) fetch(ctx context.Context) ([]model.Task, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	a.store.FetchAll(ctx)
	state := a.store.State()
	if state.Err != nil {
		return nil, a.explain(state.Err)
	}
	return state.Tasks, nil
}

// resolve finds the task a full id or an id prefix of the list refers to.
func (a *app) resolve(ctx context.Context, ref string) (model.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	tasks, err := a.fetch(ctx)
	if err != nil {
		return model.Task{}, err
	}
	if id, err := uuid.Parse(ref); err == nil {
		if task, ok := a.store.Find(id); ok {
			return task, nil
		}
		return model.Task{}, errNoSuchTask
	}
	if len(ref) < minRefLen {
		return model.Task{}, fmt.Errorf("task id %q is too short: use at least %d characters", ref, minRefLen)
	}

	var matches []model.Task
	for _, task := range tasks {
		if strings.HasPrefix(task.ID.String(), ref) {
			matches = append(matches, task)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, errNoSuchTask
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("task id %q is ambiguous: %d tasks match", ref, len(matches))
	}
}

func (a *app) parseDue(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	due, err := client.ParseDueDate(raw, a.now().In(a.loc))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", today or tomorrow", raw)
	}
	return &due, nil
}

func parseRepeat(raw string) (*model.RecurrencePattern, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	pattern := model.RecurrencePattern(strings.ToUpper(strings.TrimSpace(raw)))
	if !pattern.Valid() {
		return nil, fmt.Errorf("invalid repeat %q: use daily, weekly or monthly", raw)
	}
	return &pattern, nil
}
