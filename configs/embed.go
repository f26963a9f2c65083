// Package configs provides embedded configuration templates for relterms.
//
// Templates are embedded at build time so they ship with every binary.
// ProjectConfigTemplate is written by `relterms init --write-config`.
//
// Configuration hierarchy (see internal/config Load()):
//  1. Hardcoded defaults (internal/config NewConfig())
//  2. User config (~/.config/relterms/config.yaml)
//  3. Project config (relterms.yaml) or --config
//  4. Environment variables (RELTERMS_*)
package configs

import _ "embed"

// ProjectConfigTemplate is the commented project configuration. Every key
// is set to its default, so loading it changes nothing until edited.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
