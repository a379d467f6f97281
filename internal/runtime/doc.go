// Package runtime provides the execution context for gitstack commands.
//
// It resolves the repository, loads its configuration and wires the store,
// stack manager, sync engine and logger that every command shares.
package runtime
