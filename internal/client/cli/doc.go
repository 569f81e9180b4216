// Package cli provides the interactive capture client.
//
// It wires configuration, the Local Store, the sync engine, the connectivity
// monitor and the optional inbox watcher, then runs a REPL. Captures return
// as soon as they are stored locally; sync progress is only ever reported as
// aggregate counts in the prompt and in one-line state notices.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
