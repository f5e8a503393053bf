// Package app wires configuration, logging, the cookie jar, the backend
// client and the state store together and runs one CLI command.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/smrs/internal/client"
	"github.com/patric-chuzhbe/smrs/internal/config"
	"github.com/patric-chuzhbe/smrs/internal/db/jsondb"
	"github.com/patric-chuzhbe/smrs/internal/db/memorystorage"
	"github.com/patric-chuzhbe/smrs/internal/logger"
	"github.com/patric-chuzhbe/smrs/internal/models"
	"github.com/patric-chuzhbe/smrs/internal/sessionjar"
	"github.com/patric-chuzhbe/smrs/internal/store"
)

// ErrUsage is returned when the command line does not name a known command.
var ErrUsage = errors.New(`usage: smrs [-s server] [-l level] [-f cookie-file] [-c config] ` +
	`session | session set <value> | list | save <url> [token] | forget <token>`)

type cookieKeeper interface {
	LoadCookies(ctx context.Context) (map[string][]models.StoredCookie, error)
	SaveCookies(ctx context.Context, origin string, cookies []models.StoredCookie) error
	Close() error
}

type backend interface {
	GetSession(ctx context.Context) (models.Session, error)
	PostSession(ctx context.Context, session models.Session) (models.Session, error)
	ListLinks(ctx context.Context) ([]models.LinkRecord, error)
	Save(ctx context.Context, url string, token *models.Token) (models.Token, error)
	Forget(ctx context.Context, token models.Token) (models.Token, error)
}

// App encapsulates the configuration, the backend client and the store
// needed to run a single smrs command.
type App struct {
	cfg     *config.Config
	keeper  cookieKeeper
	backend backend
	store   *store.Store
	out     io.Writer
	errOut  io.Writer
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting the cookie keeper and replaying stored cookies
// - creating the backend client and the store
// - rendering alerts to errOut as they appear
func New(ctx context.Context, out, errOut io.Writer, configOptions ...config.InitOption) (*App, error) {
	cfg, err := config.New(configOptions...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	keeper, err := getKeeperByType(cfg)
	if err != nil {
		return nil, err
	}

	jar, err := sessionjar.New(ctx, keeper)
	if err != nil {
		return nil, err
	}

	backendClient := client.New(cfg.ServerURL, client.WithCookieJar(jar))

	return newApp(cfg, keeper, backendClient, out, errOut), nil
}

func newApp(cfg *config.Config, keeper cookieKeeper, b backend, out, errOut io.Writer) *App {
	a := &App{
		cfg:     cfg,
		keeper:  keeper,
		backend: b,
		store:   store.New(b),
		out:     out,
		errOut:  errOut,
	}

	rendered := map[int]bool{}
	a.store.OnChange(func(state store.State) {
		for _, alert := range state.Alerts {
			if rendered[alert.ID] {
				continue
			}
			rendered[alert.ID] = true
			fmt.Fprintf(a.errOut, "[%s] %s\n", alert.Type, alert.Msg)
			a.store.RemoveAlert(alert.ID)
		}
	})

	return a
}

// Run executes the command named by the positional arguments.
// A failure is shown as an error alert and returned.
func (a *App) Run(ctx context.Context) error {
	err := a.dispatch(ctx, a.cfg.Args)
	if err != nil {
		logger.Log.Debugln("command failed", "args", a.cfg.Args, zap.Error(err))
		a.store.AddAlert(err.Error(), store.WithAlertType(models.AlertTypeError))
		return err
	}

	return nil
}

// Close persists cookies and flushes the logger.
func (a *App) Close() error {
	keeperErr := a.keeper.Close()
	if err := logger.Sync(); err != nil {
		fmt.Fprintln(a.errOut, "Logger sync error:", err)
	}

	return keeperErr
}

func (a *App) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "session":
		if len(args) == 1 {
			return a.showSession(ctx)
		}
		if len(args) == 3 && args[1] == "set" {
			return a.setSession(ctx, args[2])
		}
	case "list":
		if len(args) == 1 {
			return a.listLinks(ctx)
		}
	case "save":
		if len(args) == 2 {
			return a.save(ctx, args[1], nil)
		}
		if len(args) == 3 {
			token := models.Token(args[2])
			return a.save(ctx, args[1], &token)
		}
	case "forget":
		if len(args) == 2 {
			return a.forget(ctx, models.Token(args[1]))
		}
	}

	return fmt.Errorf("%w (got %q)", ErrUsage, strings.Join(args, " "))
}

func (a *App) showSession(ctx context.Context) error {
	if err := a.store.LoadSession(ctx); err != nil {
		return err
	}

	a.printJSON(a.store.Session())
	a.store.AddAlert("session loaded")

	return nil
}

// setSession sends value as is when it is valid JSON and as a JSON string otherwise.
func (a *App) setSession(ctx context.Context, value string) error {
	session := models.Session(value)
	if !json.Valid(session) {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("in internal/app/app.go/setSession(): error while `json.Marshal()` calling: %w", err)
		}
		session = encoded
	}

	result, err := a.backend.PostSession(ctx, session)
	if err != nil {
		return err
	}

	a.printJSON(result)
	a.store.AddAlert("session replaced")

	return nil
}

func (a *App) listLinks(ctx context.Context) error {
	links, err := a.backend.ListLinks(ctx)
	if err != nil {
		return err
	}

	for _, l := range links {
		a.printJSON(l)
	}
	a.store.AddAlert(fmt.Sprintf("%d links", len(links)))

	return nil
}

func (a *App) save(ctx context.Context, url string, token *models.Token) error {
	saved, err := a.backend.Save(ctx, url, token)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, saved)
	a.store.AddAlert("saved " + url)

	return nil
}

func (a *App) forget(ctx context.Context, token models.Token) error {
	forgotten, err := a.backend.Forget(ctx, token)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, forgotten)
	a.store.AddAlert(fmt.Sprintf("forgot %s", forgotten))

	return nil
}

func (a *App) printJSON(raw json.RawMessage) {
	if len(raw) == 0 {
		fmt.Fprintln(a.out, "null")
		return
	}
	fmt.Fprintln(a.out, string(raw))
}

func getAvailableKeeperType(cfg *config.Config) int {
	if cfg.CookieFile != "" {
		return models.KeeperTypeFile
	}

	return models.KeeperTypeMemory
}

func getKeeperByType(cfg *config.Config) (cookieKeeper, error) {
	if getAvailableKeeperType(cfg) == models.KeeperTypeFile {
		return jsondb.New(cfg.CookieFile)
	}

	return memorystorage.New()
}
