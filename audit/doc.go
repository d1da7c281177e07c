// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit provides append-only sinks for the tabulation audit trail.

  - FileSink: appends each line to a text file (auditFile.txt by default)
  - Multi: fans a line out to several sinks
  - Discard: drops every line

All sinks satisfy tally.AuditSink. The tabulators keep their own in-memory
copy of every line, so a failing sink never loses events from the result.
*/
package audit
