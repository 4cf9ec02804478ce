// Package foldertree models folder trees and builds them from the filesystem.
//
// A [Node] describes one directory: its display name, absolute path, whether
// it looks like a project root, its subfolders and how many files it holds.
// Trees are the input to the layout engine in package layout.
//
// # Walking
//
// [Walker.Walk] reads a directory recursively up to a depth limit. Folders
// that contain a project indicator (go.mod, package.json, .git, ...) are
// marked as projects and not descended into, so a workspace of repositories
// shows up as one box per repository. Build output and tooling folders
// (node_modules, dist, dot-folders, ...) are skipped.
//
//	w := foldertree.NewWalker(nil, nil)
//	tree, err := w.Walk(ctx, "/home/me/code", foldertree.DefaultMaxDepth)
//
// # Serialization
//
// Trees round-trip through JSON with [Marshal]/[Unmarshal] and
// [ReadFile]/[WriteFile], using the same field names as the desktop backend.
package foldertree
