// Package templates ships the built-in API template definitions.
package templates

import "embed"

// FS holds the default definitions, loaded when no other source is configured.
//
//go:embed *.yaml
var FS embed.FS
