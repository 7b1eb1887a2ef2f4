// Package notifications delivers import events via ntfy.
//
// NewService returns an ntfy publisher when a topic is configured and a no-op
// otherwise, so callers never branch on configuration. Events outside the
// enumerated set are ignored.
package notifications
