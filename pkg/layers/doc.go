/*
Package layers maintains the ordering, membership and visibility of scene layers.

A Store always holds at least one layer and always has a current layer, the one new
objects are added to. Layers keep non-owning object handles (domain.ObjectID); the
objects themselves live in the scene table.

Operations report success with bool (or value, ok) returns and leave the store unchanged
when they are rejected. A Store is not safe for concurrent use: callers serialize access,
see the workspace package.
*/
package layers
