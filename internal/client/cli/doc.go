// Package cli provides the interactive GoalKeeper command-line client.
//
// The client starts as whatever the server session says it is: a guest is
// created on the first goal call, so goals can be added before signing up.
// A background watcher pings the server and flips the prompt between online
// and offline.
//
// Commands:
//   - register / login / promote / logout / whoami
//   - list [period], add, done, undone, edit, delete, cleanup
//
// With a session file configured, the session cookie is saved between runs
// so a guest keeps its goals across restarts, as it would in a browser.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
