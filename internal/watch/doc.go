// Package watch re-triggers work when files under a set of roots change.
//
// Events from fsnotify are collected for a debounce window and handed to the
// handler as one sorted, de-duplicated batch of paths.
package watch
