package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ColumnType represents expected column schema
type ColumnType struct {
	Name     string
	DataType string
}

// TableSchema represents expected table structure
type TableSchema struct {
	Name    string
	Columns []ColumnType
}

// SchemaGuard validates database schema matches expectations
type SchemaGuard struct {
	db     *sql.DB
	driver string
}

// NewSchemaGuard creates a new schema guard
func NewSchemaGuard(db *sql.DB, driver string) *SchemaGuard {
	return &SchemaGuard{db: db, driver: driver}
}

func (sg *SchemaGuard) columnsQuery() string {
	if sg.driver == DriverSQLite {
		return `SELECT name, type FROM pragma_table_info(?)`
	}
	return `
		SELECT COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`
}

// ValidateTable validates a table's schema
func (sg *SchemaGuard) ValidateTable(ctx context.Context, schema TableSchema) error {
	rows, err := sg.db.QueryContext(ctx, sg.columnsQuery(), schema.Name)
	if err != nil {
		return fmt.Errorf("failed to query table schema for %s: %w", schema.Name, err)
	}
	defer rows.Close()

	actualColumns := make(map[string]string)
	for rows.Next() {
		var colName, dataType string
		if err := rows.Scan(&colName, &dataType); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		actualColumns[colName] = dataType
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read column info: %w", err)
	}

	if len(actualColumns) == 0 {
		return fmt.Errorf("table %s does not exist or has no columns", schema.Name)
	}

	for _, expectedCol := range schema.Columns {
		actualType, exists := actualColumns[expectedCol.Name]
		if !exists {
			return fmt.Errorf("table %s missing expected column: %s", schema.Name, expectedCol.Name)
		}
		if expectedCol.DataType != "" && !matchesDataType(actualType, expectedCol.DataType) {
			return fmt.Errorf("table %s column %s has type %s, expected %s",
				schema.Name, expectedCol.Name, actualType, expectedCol.DataType)
		}
	}

	return nil
}

// matchesDataType compares base types case-insensitively, so varchar(191) matches varchar.
func matchesDataType(actual, expected string) bool {
	actual = strings.ToLower(actual)
	expected = strings.ToLower(expected)
	return strings.HasPrefix(actual, expected)
}

// ValidateTables validates multiple tables
func (sg *SchemaGuard) ValidateTables(ctx context.Context, schemas []TableSchema) error {
	for _, schema := range schemas {
		if err := sg.ValidateTable(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}
