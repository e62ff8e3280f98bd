// Package ingest turns source files into raw record sequences.
//
// Ingestion is schema-on-read: readers map source columns and elements
// onto the shared raw field names and nothing more. No validation or
// cleaning happens here - a raw record is untrusted until the
// Canonicalizer has processed it. Rows that are structurally unreadable
// (short CSV rows, malformed XML elements) are counted, not fatal.
package ingest
