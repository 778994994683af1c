// Package shared holds helpers used by more than one package that belong to
// no single layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output, plus fixtures that render Data Protector session exports and
// schedule workbooks for parser, service and HTTP tests.
package shared
