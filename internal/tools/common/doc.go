// Package common provides the plumbing shared by the tool packages: argument
// extraction in either supported style, input schema validation, tagged stub
// results, and the instrumentation wrapper every handler is registered
// through.
package common
