// Package main hosts the mediaorg CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, takes the run lock
// for commands that mutate the library, and wires the hash database, plugin
// set, and import pipeline before handing control to internal packages.
// Keep commands declarative: new behavior belongs in internal/ first.
package main
