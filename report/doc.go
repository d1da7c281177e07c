// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package report renders tabulation results for people.

WriteText prints the terminal summary: the winner or seat list followed by a
vote breakdown with percentages. WriteWorkbook saves the same result as an
XLSX workbook with a Results sheet, a Candidates sheet and, for OPL
elections, a Parties sheet.
*/
package report
