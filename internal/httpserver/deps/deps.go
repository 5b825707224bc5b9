package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
	"github.com/MrSnakeDoc/scanvault/internal/resolver"
	"github.com/MrSnakeDoc/scanvault/internal/store"
)

// Resolver is the identification surface the handlers use.
type Resolver interface {
	Identify(ctx context.Context, img recognition.Image) (*resolver.Outcome, error)
	Grade(ctx context.Context, front recognition.Image, back *recognition.Image, mode domain.ConditionMode) (*domain.GradingReport, error)
	Tuning() resolver.Tuning
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access the server
	AllowedCIDRS   []string         // IPs allowed to access healthz/readyz endpoints
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Resolver       Resolver         // card identification and grading
	Store          store.Backend    // collection and runtime settings
	StoreKind      string           // "redis" | "memory", reported by /infra
	TuningFile     string           // empty when the built-in tuning is used
	FallbackToken  bool             // true when a recognition token is configured in the environment
	ReloadTrigger  chan struct{}    // Channel to trigger manual tuning reload (nil when no tuning file)
	MaxBodyBytes   int64            // upper bound for JSON request bodies (images are inline base64)
	IdentifyBurst  int              // per-IP burst on identify/grade
	IdentifyPerMin int              // per-IP refill on identify/grade
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
