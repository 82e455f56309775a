/*
Package store provides the PlanStore contract and its one concrete
implementation, a local bbolt-backed file store.

Only this backend is wired in this repo, matching the original
executor's design: a file/local state manager was the only active
implementation, with a ZooKeeper-backed one never more than a comment.
A different coordination-store transport can be added later by
implementing PlanStore; nothing downstream of the Plan Watcher depends
on bbolt specifically.
*/
package store
