// Package store persists stack definitions, the active stack marker and the
// sync checkpoint as TOML documents under the repository's git directory.
//
// Layout, relative to `git rev-parse --git-common-dir`:
//
//	gitstack/
//	  stacks/<name>.toml
//	  active.toml
//	  operation.toml
//
// Every write goes to a temporary file in the same directory and is renamed
// into place, so readers never observe a partially written document.
package store
