// Package refresh runs best-effort full refreshes of the attribute model.
//
// An Updater executes a fixed list of data-gathering commands one after
// another. A failing command is recorded in the Report and the sequence
// continues, so every command that succeeds still updates the store.
// Steps that require administrator rights are skipped, not failed, when the
// session user is not an administrator.
package refresh
