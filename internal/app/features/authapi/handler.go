// internal/app/features/authapi/handler.go
package authapi

import (
	"github.com/eventops/crewhub/internal/app/store/users"
	"github.com/eventops/crewhub/internal/app/system/auditlog"
	"github.com/eventops/crewhub/internal/app/system/auth"
	"github.com/eventops/crewhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the auth API feature.
type Handler struct {
	Users   *users.Store
	SM      *auth.SessionManager
	Limiter *ratelimit.LoginLimiter
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(userStore *users.Store, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   userStore,
		SM:      sm,
		Limiter: limiter,
		Audit:   audit,
		Log:     logger,
	}
}
