package httpapi

import (
	"database/sql"
	"sync/atomic"

	"go.uber.org/zap"

	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/dispatch"
	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/events"
	"jobpilot-engine/internal/letter"
	"jobpilot-engine/internal/match"
	"jobpilot-engine/internal/workflow"
)

type Deps struct {
	DB  *sql.DB
	Hub *events.Hub
	Log *zap.Logger

	// CfgVal stores config.Config
	CfgVal      *atomic.Value
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Orch    *workflow.Orchestrator
	Matcher *match.Matcher
	Letters letter.Generator

	// Dispatcher handles the manual apply endpoint
	Dispatcher *dispatch.Dispatcher

	Profile func() domain.CandidateProfile
}
