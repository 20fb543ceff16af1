// Package database handles the transactional store connection and schema
// inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly
// configure MySQL connections based on the application's configuration. The
// transactional store carries the bid receipts, statement load markers, and
// expected revenue records; analytical data lives in core/warehouse.
//
// # Connect
//
// The Connect function establishes a connection with sane pool settings and a
// ping. Timeouts are applied on the DSN so a misconfigured host fails the run
// instead of hanging it.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema, used by the
// pipeline preflight. InspectTables verifies that the reconciliation tables
// expose the columns the models expect before any stage writes to them.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	problems := database.InspectTables(db, models.RequiredTables())
package database
