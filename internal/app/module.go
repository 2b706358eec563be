package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/stepup/internal/authorization"
	"github.com/shandysiswandi/stepup/internal/notification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.authorization.enabled") {
		if err := authorization.New(authorization.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Router:     a.router,
			Messaging:  a.messaging,
			Catalog:    a.catalog,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.randomUUID,
			Bcrypt:     a.bcrypt,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module authorization", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			Messaging:   a.messaging,
			Idempotency: a.idemp,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
