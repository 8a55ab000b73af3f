// Package cli implements todoctl, the terminal frontend for the task API.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"todo-planner/internal/calendar"
	"todo-planner/internal/client"
	"todo-planner/internal/config"
	"todo-planner/internal/store"
)

var errSignedOut = errors.New("not signed in: run `todoctl login <email>` first")

// app is the state shared by every command of one invocation.
type app struct {
	cfgPath   string
	server    string
	weekStart string

	cfg     config.CLIConfig
	session *client.Session
	client  *client.Client
	store   *store.Store

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	styles styles
	now    func() time.Time
	loc    *time.Location
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "todoctl",
		Short: "Manage your tasks from the terminal",
		Long: `todoctl talks to the task server: sign in once, then list, add, edit and
complete tasks or look at a month calendar of what is due.

The session is kept in ~/.config/todoctl/config.toml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default ~/.config/todoctl/config.toml)")
	root.PersistentFlags().StringVar(&a.server, "server", "", "task server URL, saved for later runs")

	root.AddCommand(
		newSignUpCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoAmICmd(a),
		newTasksCmd(a),
		newCalendarCmd(a),
	)
	return root
}

// Execute runs todoctl against the process streams.
func Execute(version string) error {
	a := &app{now: time.Now, loc: time.Local}
	root := newRootCmd(a)
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// load reads the session file and builds the client stack for the command.
func (a *app) load(cmd *cobra.Command) error {
	a.in = bufio.NewReader(cmd.InOrStdin())
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()
	a.styles = newStyles(a.out)
	if a.now == nil {
		a.now = time.Now
	}
	if a.loc == nil {
		a.loc = time.Local
	}

	if a.cfgPath == "" {
		path, err := config.DefaultCLIPath()
		if err != nil {
			return err
		}
		a.cfgPath = path
	}
	cfg, err := config.LoadCLI(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.server != "" && strings.TrimRight(a.server, "/") != cfg.Server {
		a.cfg.Server = strings.TrimRight(a.server, "/")
		if err := a.save(); err != nil {
			return err
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a.session = client.NewSession(a.cfg.Token)
	a.session.OnUnauthorized(a.expire)
	a.client = client.New(a.cfg.Server, a.session, client.WithLogger(logger))
	a.store = store.New(a.client, store.WithLogger(logger))
	return nil
}

// expire forgets a token the server rejected.
func (a *app) expire(err *client.Error) {
	if err.Code == client.CodeInvalidCredentials || a.cfg.Token == "" {
		return
	}
	a.cfg.Token = ""
	if saveErr := a.save(); saveErr != nil {
		fmt.Fprintln(a.errOut, "Warning:", saveErr)
	}
	fmt.Fprintln(a.errOut, "Your session expired. Sign in again with: todoctl login", a.cfg.Email)
}

func (a *app) save() error {
	return config.SaveCLI(a.cfgPath, a.cfg)
}

func (a *app) requireAuth() error {
	if !a.session.Authenticated() {
		return errSignedOut
	}
	return nil
}

func (a *app) gridOptions() ([]calendar.Option, error) {
	raw := a.weekStart
	if raw == "" {
		raw = a.cfg.WeekStart
	}
	opts := []calendar.Option{calendar.WithLocation(a.loc), calendar.WithClock(a.now)}
	if raw == "" {
		return opts, nil
	}
	day, err := config.ParseWeekday(raw)
	if err != nil {
		return nil, err
	}
	return append(opts, calendar.WithWeekStart(day)), nil
}

// prompt prints label and reads one line from the input.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
