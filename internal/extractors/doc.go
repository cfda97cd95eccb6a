// Package extractors turns supported files into chunk records.
//
// Each file family lives in its own subpackage (pdf, image, text, csv,
// spreadsheet) and implements driven.Extractor. The Registry maps file
// extensions to extractors, discovers supported files under a folder and
// checks that every extractor a folder needs can actually run before any
// file is read.
package extractors
