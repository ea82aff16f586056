/*
Package domain contains the core domain models of the isoscene editor.

It defines the entities shared by the layer store, the application state and the
transports: the persisted state Tree and its sections, the Action records kept in the
undo/redo log, scene objects and their handles. The package is kept pure and free of
I/O and persistence concerns.

# Key Entities

  - Tree: the single nested source of truth persisted as one snapshot.
  - Action: a tagged record describing one user-initiated change.
  - ObjectID: a non-owning handle into the scene object table.
  - Object: a primitive shape (cube, sphere, cylinder, ramp) placed in the scene.
*/
package domain
