/*
Package ports defines the driven ports (interfaces) of the isoscene core.

These interfaces decouple the application state and the workspace manager from
concrete storage and coordination backends.

# Key Interfaces

  - SnapshotStore: persists opaque snapshot blobs under string keys (memory, file, redis, sqlite).
  - DistributedLocker: provides distributed locking for workspaces shared between replicas.
*/
package ports
