// Package openapi embeds the REST API specifications served by the controller.
package openapi

import "embed"

//go:embed v1/*
var FS embed.FS
