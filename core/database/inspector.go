package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // NULL default is possible
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	// Normalize for case-insensitive comparison against model expectations
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// InspectTables verifies that every required table exposes the expected
// columns. It returns one problem per missing table or column so a preflight
// can report everything at once instead of stopping at the first gap.
func InspectTables(db *gorm.DB, required map[string][]string) []string {
	tables := make([]string, 0, len(required))
	for name := range required {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	var problems []string
	for _, table := range tables {
		columns, err := GetTableColumns(db, table)
		if err != nil || len(columns) == 0 {
			problems = append(problems, fmt.Sprintf("table %s is missing or unreadable", table))
			continue
		}
		present := make(map[string]bool, len(columns))
		for _, col := range columns {
			present[col.Field] = true
		}
		for _, want := range required[table] {
			if !present[strings.ToLower(want)] {
				problems = append(problems, fmt.Sprintf("table %s is missing column %s", table, want))
			}
		}
	}
	return problems
}
