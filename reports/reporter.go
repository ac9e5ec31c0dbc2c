// Package reports runs the aggregate and export queries behind the admin panel.
package reports

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Reporter struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
	dayExpr func(col string) string
}

// NewReporter shares the gorm connection pool.
func NewReporter(gdb *gorm.DB) (*Reporter, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("reports: %w", err)
	}

	r := &Reporter{}
	switch gdb.Dialector.Name() {
	case "postgres":
		r.db = sqlx.NewDb(sqlDB, "pgx")
		r.builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
		r.dayExpr = func(col string) string {
			return fmt.Sprintf("to_char(%s AT TIME ZONE 'UTC', 'YYYY-MM-DD')", col)
		}
	default:
		r.db = sqlx.NewDb(sqlDB, "sqlite3")
		r.builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
		r.dayExpr = func(col string) string {
			return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", col)
		}
	}
	return r, nil
}
