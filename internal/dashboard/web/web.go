// Package web holds the embedded dashboard page and marker images.
package web

import "embed"

//go:embed index.html app.js static
var Files embed.FS
