// Package importer moves candidate records into the collection.
//
// Three paths feed it: photo uploads reviewed by a person (Reconcile then
// Confirm), watched-folder photos committed automatically under the
// confidence policy (AutoCommit), and CSV files (ImportCSV). All three end
// in a single bulk write so a batch costs one backup.
package importer
