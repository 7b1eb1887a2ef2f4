// Package plugins implements the hooks that run around each placed file.
//
// Build constructs the plugins listed in [plugins] in order:
//   - googlephotos: queues photos and videos, uploads them in Batch
//   - notify: ntfy message per file and a run summary
//   - manifest: CSV row per imported file
//   - throwerror, runtimeerror: fault injection for hard and soft failures
//
// A Before hook vetoes a file only with an error wrapping
// services.ErrPluginHard. Everything else is logged and processing continues.
package plugins
