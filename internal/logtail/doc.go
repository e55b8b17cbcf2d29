// Package logtail reads the tail of brokerdesk's JSON log for the activity
// view.
//
// Read uses a ring buffer so only the last N lines are held in memory,
// however large the file grows. ReadEntries decodes the zap JSON records and
// Entry.Format renders them as one line each. A missing log file is not an
// error; it reads as empty.
package logtail
