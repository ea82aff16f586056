// Package scene is the headless stand-in for the renderer: it owns the object table that
// layers refer to by id, and holds the small pieces of arithmetic the editor needs for
// the camera, the grid and background colours.
package scene
