package cli

import (
	"github.com/veldrane/herald/internal/core"
	"github.com/veldrane/herald/internal/observability"
	"github.com/veldrane/herald/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	Lifecycle core.DecisionManager
	Actions   core.ActionManager
	Admin     core.AdminStore
	Runner    *core.Scheduler
	EventLog  observability.EventLog
	Config    models.GlobalConfig
)

// Persistent flag values shared across subcommands.
var (
	guildFlag   string
	channelFlag string
)
