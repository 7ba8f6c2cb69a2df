// Package api embeds the OpenAPI description of the web server so the
// binary can serve it without a checkout next to it.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
