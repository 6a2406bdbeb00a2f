package cmd

import (
	"errors"
	"fmt"
	"strings"

	"orgconsole/dal"
	"orgconsole/forms"
	"orgconsole/models"
	"orgconsole/repository"
	"orgconsole/services"
	"orgconsole/session"
	"orgconsole/utils"
	"orgconsole/utils/logger"

	"github.com/spf13/cobra"
)

// cliConsoleID names the single console a CLI run drives
const cliConsoleID = "cli"

// app is the per-invocation wiring shared by the CLI commands
type app struct {
	cfg     *models.Config
	logger  logger.Logger
	tokens  *session.FileStore
	console *services.Console
}

func loadConfig(opts *rootOptions) (*models.Config, error) {
	cfg, err := utils.GetConfig(opts.configFile)
	if err != nil {
		return nil, withCode(exitConfig, err)
	}
	return cfg, nil
}

// openApp builds a console over the file-backed token. Unlike the web
// console it is not mounted: each command loads only what it prints.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	log := logger.NewLoggerWithOutput(opts.logLevel, cfg.LogFormat, cmd.ErrOrStderr())

	tokens := session.NewFileStore(cfg.TokenDir)
	api, err := dal.NewAPIClient(cfg.APIBaseURL, tokens, nil, log)
	if err != nil {
		return nil, withCode(exitConfig, err)
	}
	repos := repository.NewRepository(api, log)

	return &app{
		cfg:     cfg,
		logger:  log,
		tokens:  tokens,
		console: services.NewConsole(cliConsoleID, repos, tokens, log),
	}, nil
}

// submit opens a form, submits values and turns the outcome into an error
func (a *app) submit(cmd *cobra.Command, open services.Event, values map[string]string) (*models.Notice, error) {
	ctx := cmd.Context()
	a.console.Dispatch(ctx, open)
	if err := a.console.Submit(ctx, values); err != nil {
		return nil, withCode(exitFailure, err)
	}

	snap := a.console.Snapshot()
	if snap.Form != nil && snap.Form.HasErrors() {
		return nil, withCode(exitValidation, formError(snap.Form))
	}
	if snap.Notice != nil && snap.Notice.Kind == models.NoticeError {
		return nil, withCode(exitBackend, errors.New(snap.Notice.Message))
	}
	return snap.Notice, nil
}

// backendError maps a facade error onto an exit code
func backendError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, services.ErrUnauthenticated) {
		return withCode(exitAuth, fmt.Errorf("%w: run `orgconsole login` first", err))
	}
	var apiErr *dal.Error
	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
		return withCode(exitAuth, errors.New(apiErr.MessageOr("session expired")))
	}
	return withCode(exitBackend, errors.New(dal.MessageOr(err, "request failed")))
}

// formError joins the field errors in form order
func formError(f *forms.Form) error {
	var msgs []string
	for _, field := range f.Fields() {
		if msg := f.Error(field.Name); msg != "" {
			msgs = append(msgs, field.Label+": "+msg)
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
