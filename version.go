package shopkeep

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release version of shopkeep.
var Version = strings.TrimSpace(rawVersion)
