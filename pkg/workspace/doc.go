// Package workspace hosts many editing sessions side by side. Each workspace is an
// editor.Editor persisted under its own key prefix; access to a workspace is serialized
// with a reference-counted local lock and, optionally, a distributed lock.
package workspace
