// Package configs provides the embedded configuration template for retrivd.
//
// The template is embedded at build time with //go:embed so it ships in
// every distribution. `retrivd config init` writes it next to the binary's
// working directory; `retrivd --config` points at the result.
package configs

import _ "embed"

// ConfigTemplate is the annotated example configuration written by
// `retrivd config init`.
//
//go:embed retrivd.example.yaml
var ConfigTemplate string
