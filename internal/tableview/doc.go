// Package tableview implements the list pipeline shared by every brokerdesk
// screen.
//
// A screen fetches its raw collection once, then derives what it shows on
// every render:
//
//	raw ──Filter.Apply──> filtered ──Take──> displayed ──Summary──> status line
//
// Filter matches a free-text query case-insensitively against a fixed list of
// derived fields and ANDs it with the structured predicates (category, status,
// date range). A structured value of "" or "all" leaves its dimension open.
// Take keeps a prefix of the filtered rows sized by PageSize, where All keeps
// everything. Summary renders "Showing X to Y of Z entries" and never reports
// a first row for an empty view.
//
// Nothing here mutates its input. Apply called twice with the same arguments
// yields equal results, so the UI recomputes the view freely instead of caching
// it.
package tableview
