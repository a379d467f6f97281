// Package sync implements the merge cascade that brings a stack up to date
// with its trunk.
//
// Branches are processed bottom to top: the parent of each branch (the trunk
// for the first one, otherwise the branch below) is merged into it. A branch
// checked out in a linked worktree is merged there instead of in the main
// working copy. When a merge stops on conflicts the cascade halts and a
// checkpoint is written so the sync can be continued or aborted later, from
// the same or a new process.
package sync
