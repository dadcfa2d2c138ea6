// Package tsv reads gene nomenclature upload files.
//
// An upload file is UTF-8 text with one header line followed by tab separated
// data lines. The header must list exactly the recognized columns in order;
// it is checked once when the file is opened. Data lines are returned as
// pgnc.RawRow values without any content checks, which belong to the
// validator.
package tsv
