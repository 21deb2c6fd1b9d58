// Package webui serves the single page canvassing app.
package webui

import (
	"github.com/canvasstrack/voterroll/internal/app"
)

type WebUI struct {
	*app.Application
}
