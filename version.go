package rulebook

import _ "embed"

// Version is the release version, trimmed of the trailing newline by callers.
//
//go:embed VERSION
var Version string
