// Package repository handles all interactions with the database.
//
// It contains the SQL issued against the bridge survey table and labels
// raw result rows through the schema registry, keeping SQL away from the
// service layer. Every statement takes its values as bound arguments.
package repository
