// Package report renders plans and run outcomes for people, as colored
// tables, and for machines, as YAML.
package report
