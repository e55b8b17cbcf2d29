// Package app wires configuration, the API client, the session, and the
// shared store into the brokerdesk console and CLI.
//
// # Overview
//
// Bootstrap is the composition root. It returns an Env holding every
// component; the console (Run) and the one-shot CLI commands both start from
// it.
//
//   - env.go: Bootstrap, Env, and session restore (file or BROKERDESK_TOKEN)
//   - loader.go: Loader fetches a screen's collection into state.Store and
//     handles login and logout
//   - poller.go: background refresh of the active screen with backoff
//   - dashboard.go: concurrent record counts for every screen of a role
//   - app.go: Run, which starts the poller and the console
//
// # Data Flow
//
//	Run()
//	 ├─> Bootstrap()       config, logger, client, session, store
//	 ├─> prefs.Load()      theme and page sizes
//	 ├─> StartPoller()     refreshes the active screen every interval
//	 └─> ui.Run()          console (blocks)
//
//	Poller loop:
//	 ├─> Loader.Load(active screen)
//	 │    └─> store.Update()
//	 └─> console reads store.Snapshot() on its own tick
//
// # Error Handling
//
// Load failures are recorded on the screen's snapshot and the previous rows
// stay visible. Only an unauthorized response ends the session: the loader
// drops cached rows and invalidates the session manager, whose subscribers
// (the console) return to the login form. The poller backs off exponentially
// while fetches keep failing, capped at 30 seconds.
package app
