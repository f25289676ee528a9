// Package fileops provides workspace-scoped filesystem access: every read,
// write and scan happens inside an os.Root boundary, so relative paths can
// never escape the workspace through traversal or symlinks.
package fileops
