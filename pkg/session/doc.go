/*
Package session implements session lifecycle and per-session serialization.

The Manager is the single owner of sessions: it creates each one lazily
from the catalog, hands out copies, and runs every mutation of a session
under that session's lock. Locks are in-process mutexes, reference counted
and dropped when idle, optionally combined with a distributed lock so that
several replicas can share one store.
*/
package session
