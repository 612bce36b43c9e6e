// Package models holds the GORM entities of the enrollment app.
//
// The gorm tags are the single place column names and types are spelled out;
// the canonical schemas in package enrollment are derived from them.
package models
