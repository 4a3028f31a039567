package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown
// (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Workflow
	wh := WorkflowHandler{Orch: d.Orch}
	mux.HandleFunc("/workflow/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: wh.Run,
	}))
	mux.HandleFunc("/workflow/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: wh.Status,
	}))
	mux.HandleFunc("/workflow/auto/start", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: wh.StartAuto,
	}))
	mux.HandleFunc("/workflow/auto/stop", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: wh.StopAuto,
	}))
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: wh.Health,
	}))

	// Scoring and manual apply
	mh := MatchHandler{Matcher: d.Matcher, Profile: d.Profile}
	mux.HandleFunc("/score", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: mh.Score,
	}))
	ah := ApplyHandler{
		DB:         d.DB,
		Dispatcher: d.Dispatcher,
		Letters:    d.Letters,
		Profile:    d.Profile,
		Log:        d.Log,
	}
	mux.HandleFunc("/apply", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Apply,
	}))

	// Stored data
	lh := ListingsHandler{DB: d.DB}
	mux.HandleFunc("/listings", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.List,
	}))
	aph := ApplicationsHandler{DB: d.DB}
	mux.HandleFunc("/applications", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: aph.List,
	}))
	mux.HandleFunc("/applications/", methodMux(map[string]http.HandlerFunc{
		http.MethodPut: aph.UpdateStatus, // expects /applications/{id}/status
	}))
	acth := ActivityHandler{DB: d.DB}
	mux.HandleFunc("/activity", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: acth.List,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/options", methodMux(map[string]http.HandlerFunc{
		http.MethodPatch: ch.PatchOptions,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))
	mux.HandleFunc("/api/secrets/smtp", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetSMTPPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Maintenance
	dbh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dbh.Checkpoint,
	}))

	return mux
}
