// Package shared groups helpers used by more than one package.
//
// The testutil subpackage writes transaction fixtures to temp files and
// captures slog output for assertions.
package shared
