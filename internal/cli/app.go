// Package cli is the terminal front end of the tracker client: a login flow
// plus an interactive dashboard over the applications list, the stats view
// and the PDF export. It renders state owned by the controllers and never
// talks to the network directly — everything goes through the services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/mfekih/jobtrack/internal/api"
	"github.com/mfekih/jobtrack/internal/apperror"
	"github.com/mfekih/jobtrack/internal/model"
	"github.com/mfekih/jobtrack/internal/order"
	"github.com/mfekih/jobtrack/internal/repository"
	"github.com/mfekih/jobtrack/internal/service"
	"github.com/mfekih/jobtrack/internal/session"
)

// errQuit unwinds the dashboard loop when the user asks to leave.
var errQuit = errors.New("cli: quit")

// errLoggedOut unwinds the dashboard back to the guard after a logout.
var errLoggedOut = errors.New("cli: logged out")

// App wires the controllers to a terminal.
type App struct {
	gateway *api.Client
	store   repository.CredentialStore
	guard   *session.Guard
	list    *service.ApplicationService
	stats   *service.StatsService
	form    *service.FormService
	export  *service.ExportService
	board   *order.Board
	logger  *slog.Logger

	prompt *prompter
	out    io.Writer
}

// Options bundles the App's dependencies.
type Options struct {
	Gateway *api.Client
	Store   repository.CredentialStore
	Guard   *session.Guard
	List    *service.ApplicationService
	Stats   *service.StatsService
	Form    *service.FormService
	Export  *service.ExportService
	Logger  *slog.Logger
	In      io.Reader
	Out     io.Writer
}

func New(opts Options) *App {
	return &App{
		gateway: opts.Gateway,
		store:   opts.Store,
		guard:   opts.Guard,
		list:    opts.List,
		stats:   opts.Stats,
		form:    opts.Form,
		export:  opts.Export,
		board:   order.NewBoard(),
		logger:  opts.Logger,
		prompt:  newPrompter(opts.In, opts.Out),
		out:     opts.Out,
	}
}

// Run is the outer loop: guard check, then either the login flow or the
// dashboard. A session rejected mid-dashboard (expired token) falls back
// here, where the guard has already cleared the credential, and the login
// flow takes over.
func (a *App) Run(ctx context.Context) error {
	for {
		decision, err := a.guard.Check(ctx)
		if err != nil {
			return err
		}

		if decision.RedirectToLogin() {
			if err := a.login(ctx); err != nil {
				if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			continue
		}

		err = a.dashboard(ctx, decision.User)
		switch {
		case errors.Is(err, errQuit), errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, apperror.ErrAuth):
			// A data fetch came back unauthorized. Re-resolve through the
			// guard: if the token really is dead, the guard clears it and
			// the login flow takes over.
			a.guard.Revalidate()
			continue
		case errors.Is(err, errLoggedOut):
			continue
		case err != nil:
			return err
		}
	}
}

// login prompts for credentials, exchanges them for a token and stores it.
// The guard re-checks on the next Run iteration — there is no shortcut into
// the authenticated state.
func (a *App) login(ctx context.Context) error {
	fmt.Fprintln(a.out, "\nLog in to your tracker account (blank email quits).")

	for {
		email, err := a.prompt.line("Email: ")
		if err != nil {
			return err
		}
		if email == "" {
			return errQuit
		}
		password, err := a.prompt.password("Password: ")
		if err != nil {
			return err
		}

		token, err := a.gateway.Login(ctx, email, password)
		if err != nil {
			renderMessages(a.out, apperror.MessagesOf(err))
			continue
		}
		if err := a.store.Set(ctx, token); err != nil {
			return err
		}
		return nil
	}
}

func (a *App) dashboard(ctx context.Context, user *model.User) error {
	fmt.Fprintf(a.out, "\nWelcome back, %s.\n", user.FirstName)
	if err := a.renderDashboard(ctx); err != nil {
		return err
	}

	for {
		input, err := a.prompt.line("\n> ")
		if err != nil {
			return err
		}
		if err := a.dispatch(ctx, input); err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, errLoggedOut) || errors.Is(err, apperror.ErrAuth) {
				return err
			}
			renderMessages(a.out, apperror.MessagesOf(err))
		}
	}
}

func (a *App) dispatch(ctx context.Context, input string) error {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help", "h", "?":
		a.printHelp()
		return nil
	case "quit", "q", "exit":
		return errQuit
	case "logout":
		if err := a.guard.Logout(ctx); err != nil {
			return err
		}
		a.list.Invalidate()
		a.stats.Invalidate()
		return errLoggedOut
	case "next", "n":
		a.list.NextPage()
		return a.renderList(ctx)
	case "prev", "p":
		a.list.PrevPage()
		return a.renderList(ctx)
	case "page":
		if len(args) != 1 {
			return apperror.Validation("Usage: page <number>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return apperror.Validation("Usage: page <number>")
		}
		a.list.SetPage(n)
		return a.renderList(ctx)
	case "tab":
		if len(args) != 1 {
			return apperror.Validation("Usage: tab <APPLIED|INTERVIEW|REJECTED|ACCEPTED>")
		}
		status := model.Status(strings.ToUpper(args[0]))
		if !status.Valid() {
			return apperror.Validation("Status must be one of APPLIED, INTERVIEW, REJECTED, ACCEPTED")
		}
		a.list.SetStatus(status)
		return a.renderList(ctx)
	case "new":
		return a.newApplication(ctx)
	case "edit":
		return a.editApplication(ctx, args)
	case "del", "delete":
		return a.deleteApplication(ctx, args)
	case "move":
		return a.moveApplication(ctx, args)
	case "stats":
		return a.renderStatsView(ctx)
	case "export":
		return a.exportPDF(ctx)
	case "refresh", "r":
		a.list.Invalidate()
		a.stats.Invalidate()
		return a.renderDashboard(ctx)
	case "list", "ls":
		return a.renderList(ctx)
	default:
		return apperror.Validation(fmt.Sprintf("Unknown command %q — try help", cmd))
	}
}

// renderDashboard fetches the list and the stats concurrently (they are
// independent; no ordering between them) and renders both.
func (a *App) renderDashboard(ctx context.Context) error {
	var (
		wg       sync.WaitGroup
		page     *model.Page
		stats    *model.Stats
		listErr  error
		statsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		page, listErr = a.list.Current(ctx)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = a.stats.Get(ctx)
	}()
	wg.Wait()

	if listErr != nil {
		return listErr
	}
	if statsErr != nil {
		// The list is still usable without the numbers.
		renderMessages(a.out, apperror.MessagesOf(statsErr))
	} else {
		renderStats(a.out, stats)
	}

	items := a.board.Apply(a.list.Status(), page.Items)
	renderPage(a.out, page, items, a.list.Status())
	return nil
}

func (a *App) renderList(ctx context.Context) error {
	page, err := a.list.Current(ctx)
	if err != nil {
		return err
	}
	items := a.board.Apply(a.list.Status(), page.Items)
	renderPage(a.out, page, items, a.list.Status())
	return nil
}

func (a *App) renderStatsView(ctx context.Context) error {
	stats, err := a.stats.Get(ctx)
	if err != nil {
		return err
	}
	renderStats(a.out, stats)
	return nil
}

// newApplication runs the create form. On a validation failure the entered
// values are kept as defaults for the retry, mirroring a modal that stays
// open with its fields intact.
func (a *App) newApplication(ctx context.Context) error {
	payload := model.ApplicationPayload{
		Status: a.list.Status(),
	}
	return a.runForm(ctx, "", payload)
}

func (a *App) editApplication(ctx context.Context, args []string) error {
	app, err := a.pickRow(ctx, args, "edit")
	if err != nil {
		return err
	}
	payload := model.ApplicationPayload{
		Company:         app.Company,
		JobTitle:        app.JobTitle,
		Link:            app.Link,
		ApplicationDate: app.ApplicationDate,
		Status:          app.Status,
		HadInterview:    app.HadInterview,
	}
	return a.runForm(ctx, app.ID, payload)
}

func (a *App) runForm(ctx context.Context, id string, payload model.ApplicationPayload) error {
	for {
		var err error
		if payload.Company, err = a.prompt.lineDefault("Company", payload.Company); err != nil {
			return err
		}
		if payload.JobTitle, err = a.prompt.lineDefault("Job title", payload.JobTitle); err != nil {
			return err
		}
		if payload.Link, err = a.prompt.lineDefault("Link", payload.Link); err != nil {
			return err
		}
		if payload.ApplicationDate, err = a.prompt.lineDefault("Application date (YYYY-MM-DD)", payload.ApplicationDate); err != nil {
			return err
		}
		statusText, err := a.prompt.lineDefault("Status", string(payload.Status))
		if err != nil {
			return err
		}
		payload.Status = model.Status(strings.ToUpper(statusText))
		if payload.HadInterview, err = a.prompt.yesNo("Had an interview?"); err != nil {
			return err
		}

		_, err = a.form.Submit(ctx, id, payload)
		if err == nil {
			fmt.Fprintln(a.out, "  Saved.")
			return a.renderList(ctx)
		}
		if errors.Is(err, apperror.ErrAuth) {
			return err
		}

		renderMessages(a.out, apperror.MessagesOf(err))
		again, promptErr := a.prompt.yesNo("Try again?")
		if promptErr != nil {
			return promptErr
		}
		if !again {
			return nil
		}
	}
}

func (a *App) deleteApplication(ctx context.Context, args []string) error {
	app, err := a.pickRow(ctx, args, "del")
	if err != nil {
		return err
	}
	ok, err := a.prompt.yesNo(fmt.Sprintf("Delete %s — %s?", app.Company, app.JobTitle))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := a.form.Delete(ctx, app.ID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "  Deleted.")
	return a.renderList(ctx)
}

// moveApplication reorders rows within the current status tab. The change
// is display-only: nothing is sent to the server and a fresh session shows
// server order again.
func (a *App) moveApplication(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return apperror.Validation("Usage: move <from> <to>")
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return apperror.Validation("Usage: move <from> <to>")
	}
	if !a.board.Move(a.list.Status(), from-1, to-1) {
		return apperror.Validation("Row numbers out of range")
	}
	return a.renderList(ctx)
}

// exportPDF runs the export dialog. On failure the dialog stays open and
// the same parameters are offered again.
func (a *App) exportPDF(ctx context.Context) error {
	var params model.ExportParams
	for {
		from, err := a.prompt.lineDefault("From (YYYY-MM-DD, blank for all)", params.From)
		if err != nil {
			return err
		}
		to, err := a.prompt.lineDefault("To (YYYY-MM-DD, blank for all)", params.To)
		if err != nil {
			return err
		}
		statusText, err := a.prompt.lineDefault("Status (blank for all)", string(params.Status))
		if err != nil {
			return err
		}
		params = model.ExportParams{
			From:   from,
			To:     to,
			Status: model.Status(strings.ToUpper(statusText)),
		}

		path, err := a.export.Export(ctx, params, ".")
		if err == nil {
			fmt.Fprintf(a.out, "  Exported to %s\n", path)
			return nil
		}
		if errors.Is(err, apperror.ErrAuth) {
			return err
		}

		renderMessages(a.out, apperror.MessagesOf(err))
		again, promptErr := a.prompt.yesNo("Retry export?")
		if promptErr != nil {
			return promptErr
		}
		if !again {
			return nil
		}
	}
}

// pickRow resolves a 1-based row number (as rendered, i.e. in board order)
// into the underlying application.
func (a *App) pickRow(ctx context.Context, args []string, usage string) (*model.JobApplication, error) {
	if len(args) != 1 {
		return nil, apperror.Validation(fmt.Sprintf("Usage: %s <row>", usage))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("Usage: %s <row>", usage))
	}

	page, err := a.list.Current(ctx)
	if err != nil {
		return nil, err
	}
	items := a.board.Apply(a.list.Status(), page.Items)
	if n < 1 || n > len(items) {
		return nil, apperror.Validation("Row number out of range")
	}
	return &items[n-1], nil
}

func (a *App) printHelp() {
	fmt.Fprint(a.out, `
  list            show the current page
  next / prev     change page
  page <n>        jump to a page
  tab <status>    switch status tab (APPLIED, INTERVIEW, REJECTED, ACCEPTED)
  new             create an application
  edit <row>      edit an application
  del <row>       delete an application
  move <a> <b>    reorder rows within this tab (display only)
  stats           show aggregate statistics
  export          export applications as PDF
  refresh         drop caches and refetch
  logout          clear the stored session
  quit            leave
`)
}
