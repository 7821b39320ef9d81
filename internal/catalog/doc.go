// Package catalog loads package descriptors from source trees. A package
// is described by an RPM spec file; the catalog records its name, version,
// source directory and the names it requires at build and run time.
//
// Loading is pure apart from reading files: nothing is built, installed
// or executed.
package catalog
