// Package core turns batches of uploaded trade confirmation PDFs into one
// combined CSV of trade records.
//
// It is independent of any transport: the web handlers and the tradecsv CLI
// both drive it through [Service.ProcessBatch].
//
// # Pipeline
//
// For each batch:
//
//  1. Every upload name is checked for a .pdf suffix before anything is staged.
//  2. The batch waits for a slot in the [BatchLimiter].
//  3. Each upload is copied into a per-batch staging directory, its tables are
//     read by a [TableExtractor], and the staged copy is removed.
//  4. Tables are mapped onto [TradeRecord] values by [Normalize].
//  5. A non-empty result is written to the output CSV by [WriteCSV].
//
// A failure on any upload aborts the batch with a [*FileError]; records from
// earlier uploads in the same batch are discarded.
//
// # Trade Records
//
// Every record has the 14 schema [Columns] plus "Source File" and "Date".
// Cell i of a table row becomes column i; missing cells are empty strings and
// extra cells are dropped. Values are not trimmed or parsed.
package core
