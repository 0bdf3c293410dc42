// Package secrets stores provider credentials as plain-text files with
// owner-only permissions, one file per provider, plus a selection file
// naming the active provider. Reads go through an in-memory cache that
// a directory watcher invalidates when files change on disk, so keys
// edited outside the process are picked up without a restart.
package secrets
