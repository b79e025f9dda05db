// Package templates holds the HTML pages of the site.
package templates

import "embed"

//go:embed *.tmpl
var FS embed.FS
