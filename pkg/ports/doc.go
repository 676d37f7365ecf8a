/*
Package ports defines the driven ports (interfaces) of the shopkeep core.

These interfaces decouple the turn path from external implementations, so
the state engine works the same with any storage backend, lock service,
catalog source or reasoning component.

# Key Interfaces

  - SessionStore: persists and loads Sessions (memory, redis).
  - DistributedLocker: serializes access to one session across replicas.
  - CatalogLoader: produces the immutable Catalog at start-up (built-in, file, loam directory).
  - IntentSource: turns one user message into a reply and an ordered list of tool calls.
*/
package ports
