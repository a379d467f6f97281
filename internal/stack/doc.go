// Package stack resolves the active stack of a repository and applies the
// non-cascading edits to it: init, push, pop, drop, shift, delete, pull
// request bookkeeping and routing commits to a branch of the stack.
//
// Every operation takes the repository path explicitly and never prints or
// prompts; callers render the returned values.
package stack
