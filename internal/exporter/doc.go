// Package exporter turns selected listings into downloadable address files.
//
// This package contains three main components:
//
// MarshalAddressCSV: Renders expanded address records into the CSV format the
// mail-merge consumers expect, with a fixed German header and every field
// double-quoted.
//
// MarshalAddressXLSX: Renders the same records as a single-sheet workbook for
// users who open exports directly in Excel.
//
// Export: The pipeline that filters listings by selection, expands house
// numbers into one record per deliverable address, serializes the records and
// stamps every exported listing in a copy of the contact history.
//
// Example usage:
//
//	result, ok := exporter.Export(listings, selection, history, time.Now())
//	if ok {
//		// hand result.Blob to the download sink, persist result.History
//	}
package exporter
