// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading it from
// various sources.
//
// The `config.Model` is the single source of truth for the `scheduler`,
// `build` and `testplan` packages. It is built once per process and passed
// down explicitly; nothing in the pipeline reads process-wide settings.
// Concrete loaders, such as for HCL, are provided in separate packages.
package config
