package appconf

import (
	"net/netip"
	"strings"
	"time"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

// Config holds the settings the HTTP layer needs at runtime.
type Config struct {
	Port      int
	Env       Environment
	Verbose   bool
	RateLimit int // requests per second per client

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int // 0 selects bcrypt.DefaultCost

	// AllowedOrigins lists the browser origins allowed to call the API
	// cross-origin. Empty allows any origin.
	AllowedOrigins []string

	// TrustedProxies are the reverse proxies whose X-Forwarded-For header
	// names the client. Empty keys clients by their remote address.
	TrustedProxies []netip.Prefix

	IndexPath string // web UI entry page
	FontPath  string // TTF with Devanagari glyphs for PDF reports, optional
}

// DefaultTokenTTL matches the lifetime tokens were issued with historically.
const DefaultTokenTTL = 1000 * time.Minute

// EnvFlagToEnvironment parses an -env flag or config file value. Matching
// ignores case; anything unrecognised is Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev":
		return Development
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}
