// Package model defines the persistent data of gitstack: stack definitions,
// their branches and pull request references, and the checkpoint written when
// a sync halts on a conflict.
package model
