package samplecli

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the release version of samplecli.
var Version = strings.TrimSpace(version)
