// Package internal provides the App struct that wires all components of
// Herald together and initializes the CLI layer.
package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/veldrane/herald/internal/chat"
	"github.com/veldrane/herald/internal/cli"
	"github.com/veldrane/herald/internal/core"
	"github.com/veldrane/herald/internal/observability"
	"github.com/veldrane/herald/internal/storage"
	"github.com/veldrane/herald/pkg/models"
)

// App holds all service dependencies for Herald.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	Decisions storage.DecisionStore
	Admin     storage.AdminStore

	// Chat transport
	Gateway chat.Gateway

	// Core services
	Lifecycle core.DecisionManager
	Actions   core.ActionManager
	Runner    *core.Scheduler

	// Observability
	EventLog observability.EventLog
	Notifier observability.Notifier
}

// NewApp creates and wires all components of Herald. basePath is the
// root directory where all data is stored (typically ~/.herald or the
// current directory containing .heraldconfig).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}
	logger := slog.Default()

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	globalCfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(globalCfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	dataDir := globalCfg.DataDir
	if dataDir == "" {
		dataDir = basePath
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// --- Storage layer ---
	app.Decisions, err = storage.NewDecisionStore(dataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening decision store: %w", err)
	}
	app.Admin, err = storage.NewAdminStore(dataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening admin store: %w", err)
	}

	// --- Chat transport ---
	app.Gateway, err = chat.NewFileGateway(filepath.Join(dataDir, "chat"))
	if err != nil {
		return nil, fmt.Errorf("opening chat gateway: %w", err)
	}

	// --- Observability ---
	eventLogPath := filepath.Join(dataDir, ".herald_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable event history if the log can't be created.
		app.EventLog = nil
	}
	if globalCfg.WebhookURL != "" {
		app.Notifier = observability.NewWebhookNotifier(globalCfg.WebhookURL)
	}

	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
	}
	var notifier core.OutcomeNotifier
	if app.Notifier != nil {
		notifier = app.Notifier
	}

	// --- Core services ---
	prompter := cli.NewStdinPrompter(globalCfg.PromptTimeout)
	storeAdapter := &decisionStoreAdapter{store: app.Decisions}

	app.Actions = core.NewActionManager(core.ActionManagerDeps{
		Store:    storeAdapter,
		Admin:    app.Admin,
		Gateway:  app.Gateway,
		Prompter: prompter,
		Events:   evtAdapter,
		Logger:   logger,
	})
	app.Lifecycle = core.NewDecisionManager(core.DecisionManagerDeps{
		Store:    storeAdapter,
		Admin:    app.Admin,
		Gateway:  app.Gateway,
		Prompter: prompter,
		Actions:  app.Actions,
		Events:   evtAdapter,
		Notifier: notifier,
		Logger:   logger,
	})
	app.Runner = core.NewScheduler(globalCfg.SchedulerInterval, app.Lifecycle, app.Admin, app.Gateway, logger)

	// --- Wire CLI package-level variables ---
	cli.Lifecycle = app.Lifecycle
	cli.Actions = app.Actions
	cli.Admin = app.Admin
	cli.Runner = app.Runner
	cli.EventLog = app.EventLog
	cli.Config = *globalCfg

	return app, nil
}

// Close releases resources held by the App, such as the event log file
// handle. It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the Herald data
// directory. It checks the HERALD_HOME env var, then walks up from the
// current directory looking for a .heraldconfig file.
func ResolveBasePath() string {
	if home := os.Getenv("HERALD_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".heraldconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// decisionStoreAdapter adapts storage.DecisionStore to
// core.DecisionStore, flattening the versioned document into a plain
// decision list.
type decisionStoreAdapter struct {
	store storage.DecisionStore
}

func (a *decisionStoreAdapter) ListDecisions() ([]models.Decision, error) {
	doc, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Decisions, nil
}

func (a *decisionStoreAdapter) AppendDecision(d models.Decision) error {
	return a.store.AppendDecision(d)
}

func (a *decisionStoreAdapter) UpdateDecision(d models.Decision) error {
	return a.store.UpdateDecision(d)
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
