// Package hcl provides the concrete HCL implementation of the configuration
// Loader defined in the `config` package. It is responsible for file
// discovery, parsing, and translation of HCL blocks into the
// format-agnostic model. Test command templates are kept as unevaluated
// expressions; the test plan builder evaluates them once the run
// variables are known.
package hcl
