// Package model defines the data types shared by the download manager:
// tasks, their status state machine, progress snapshots, per-call options,
// and terminal results.
//
// A Task is exclusively owned by the manager's registry for its lifetime;
// everything handed to callers is a copy.
package model
