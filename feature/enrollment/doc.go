// Package enrollment declares the canonical schemas of the enrollment app's
// governed tables.
//
// Columns are read from the GORM entities in the models subpackage. This
// package adds what the entities cannot express: foreign keys, uniqueness,
// supporting indexes, role value lists and the legacy column names that mark a
// table as belonging to an older schema generation.
package enrollment
