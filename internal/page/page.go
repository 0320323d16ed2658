// Package page supplies the static document served by the workers. The
// document is embedded at build time; callers treat it as an opaque UTF-8
// string.
package page

import _ "embed"

//go:embed page.html
var document string

func Document() string {
	return document
}
