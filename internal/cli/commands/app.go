package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nexa-tasks/nexa/internal/api"
	"github.com/nexa-tasks/nexa/internal/cli/config"
	"github.com/nexa-tasks/nexa/internal/cli/profileselect"
	"github.com/nexa-tasks/nexa/internal/logger"
	"github.com/nexa-tasks/nexa/internal/models"
	"github.com/nexa-tasks/nexa/internal/output"
	"github.com/nexa-tasks/nexa/internal/router"
	"github.com/nexa-tasks/nexa/internal/session"
	"github.com/nexa-tasks/nexa/internal/tokenstore"
)

// maxPendingHops bounds how many recorded navigations are followed after a
// command
const maxPendingHops = 3

// App holds everything a command needs. It is created once by the root
// command and wired in PersistentPreRunE.
type App struct {
	// Flags bound by the root command
	Flags config.Overrides
	JSON  bool

	Settings *config.Settings
	Logger   zerolog.Logger
	Tokens   *tokenstore.Store
	Session  *session.Store
	Client   *api.Client
	Router   *router.Router
	Out      *output.Printer

	// In is read by prompts; Interactive reports whether it is a terminal
	In          io.Reader
	Interactive bool
}

// NewApp returns an unwired app
func NewApp() *App {
	return &App{In: os.Stdin}
}

// Setup resolves configuration and wires the app for cmd
func (a *App) Setup(cmd *cobra.Command) error {
	// Already wired by the caller
	if a.Client != nil {
		return nil
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	settings, err := config.Resolve(workDir, a.Flags, profileselect.Chooser())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(settings.LogLevel, settings.LogFormat)

	tokens, err := tokenstore.Open(settings.TokenStore, settings.StateDir, settings.Profile)
	if err != nil {
		return err
	}

	a.Interactive = term.IsTerminal(int(os.Stdin.Fd()))
	a.Wire(settings, tokens, cmd.OutOrStdout(), logger.GetLogger())
	return nil
}

// Wire builds the API client, session and router around a token store
func (a *App) Wire(settings *config.Settings, tokens *tokenstore.Store, out io.Writer, log zerolog.Logger) {
	a.Settings = settings
	a.Tokens = tokens
	a.Logger = log
	a.Out = output.New(out, a.JSON)
	if a.In == nil {
		a.In = os.Stdin
	}

	a.Session = session.New()
	a.Router = router.New(a.Session, log.With().Str("component", "router").Logger())

	guard := &api.SessionGuard{
		Teardown:   a.teardown,
		Navigator:  a.Router,
		LoginRoute: router.RouteLogin,
		Logger:     log.With().Str("component", "api").Logger(),
	}
	a.Client = api.New(settings.APIURL,
		api.WithTimeout(settings.Timeout),
		api.WithLogger(log.With().Str("component", "api").Logger()),
		api.WithRequestInterceptor(api.BearerToken(tokens, log)),
		api.WithErrorInterceptor(guard.Intercept),
	)

	a.registerPages()
	a.Router.OnRedirect = func(from, to string) {
		a.Logger.Debug().Str("from", from).Str("to", to).Msg("Redirecting")
	}
}

// teardown removes every trace of the local session: persisted values first,
// then the in-memory user
func (a *App) teardown() error {
	err := a.Tokens.Clear()
	a.Session.Clear()
	return err
}

// InitSession loads the current user from the API when a token is stored
func (a *App) InitSession(ctx context.Context) error {
	token, err := a.Tokens.Token()
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to read stored token")
	}

	if exp, ok := api.TokenExpiry(token); ok {
		a.Logger.Debug().Time("expires_at", exp).Msg("Stored token")
	}

	if err := a.Session.Init(ctx, a.Client, token != ""); err != nil {
		// The guard decides what to show; an auth failure has already been
		// handled by the session guard
		a.Logger.Debug().Err(err).Msg("Failed to load profile")
		if api.IsTimeout(err) || errors.Is(err, api.ErrServer) {
			return err
		}
	}
	return nil
}

// Visit renders path through the guard, then follows any navigation the
// session or the API client recorded meanwhile
func (a *App) Visit(ctx context.Context, path string, page router.Page) error {
	err := a.Router.Visit(ctx, path, page)
	if drainErr := a.drain(ctx); drainErr != nil && err == nil {
		err = drainErr
	}
	return err
}

// Open initializes the session and visits path; the usual entry point of a
// page command
func (a *App) Open(ctx context.Context, path string, page router.Page) error {
	if err := a.InitSession(ctx); err != nil {
		return err
	}
	return a.Visit(ctx, path, page)
}

// fail follows any navigation a failed request recorded, such as the login
// page after a rejected token, then returns err
func (a *App) fail(ctx context.Context, err error) error {
	if drainErr := a.drain(ctx); drainErr != nil {
		a.Logger.Debug().Err(drainErr).Msg("Failed to follow pending navigation")
	}
	return err
}

func (a *App) drain(ctx context.Context) error {
	for i := 0; i < maxPendingHops; i++ {
		next := a.Router.TakePending()
		if next == "" || next == a.Router.Current() {
			return nil
		}
		if err := a.Router.Visit(ctx, next, nil); err != nil {
			return err
		}
	}
	return nil
}

// Login persists the token of an authenticated user and starts the session
func (a *App) Login(user *models.User) error {
	if err := a.Tokens.SaveToken(user.Token); err != nil {
		return err
	}
	if err := a.Tokens.SaveEmail(user.Email); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to remember email")
	}
	a.Session.Set(user)
	return nil
}

// CurrentUser returns the session user or an error telling the user to log in
func (a *App) CurrentUser() (*models.User, error) {
	user := a.Session.User()
	if user == nil {
		return nil, errNotLoggedIn
	}
	return user, nil
}

var errNotLoggedIn = errors.New("not logged in. Please run 'nexa login' first")
