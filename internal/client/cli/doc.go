// Package cli provides the interactive notesum terminal client.
//
// It wires configuration, the local state file, the API services and a REPL.
// A session kept in the state file is restored on start; otherwise the user
// registers or logs in. A background watcher probes the server and shows
// online/offline in the prompt.
//
// Commands:
//   - register, login, logout
//   - summarize (ask the server to summarize a note), save
//   - list [query], mine [query], star <id>, share <id>, show <slug>,
//     delete <id>, export <id> [md|txt|html]
//   - help, exit
//
// The REPL is started by the cobra root command (see NewRootCommand) and
// blocks until the user exits.
package cli
