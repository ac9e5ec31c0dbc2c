package reports

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/xuri/excelize/v2"
)

const (
	ScopeAll      = "all"
	ScopeReviewed = "reviewed"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

type ExportRow struct {
	PostID        uint           `db:"post_id"`
	Username      string         `db:"username"`
	Content       string         `db:"content"`
	Sentiment     string         `db:"sentiment"`
	Confidence    float64        `db:"confidence"`
	Reviewed      bool           `db:"reviewed"`
	CreatedAt     time.Time      `db:"created_at"`
	AdminUsername sql.NullString `db:"admin_username"`
	Comment       sql.NullString `db:"comment"`
	ReviewedOn    sql.NullTime   `db:"reviewed_on"`
}

var exportHeader = []string{
	"Post ID", "Username", "Content", "Sentiment", "Confidence",
	"Timestamp", "Reviewed", "Reviewed By", "Admin Comment", "Reviewed On",
}

func (r *Reporter) ExportRows(ctx context.Context, scope string) ([]ExportRow, error) {
	q := r.builder.
		Select(
			"p.id AS post_id", "p.username", "p.content", "p.sentiment", "p.confidence",
			"p.reviewed", "p.created_at",
			"a.admin_username", "a.comment", "a.updated_at AS reviewed_on",
		).
		From("user_posts p").
		LeftJoin("alerts a ON a.post_id = p.id").
		OrderBy("p.created_at DESC", "p.id DESC")
	if scope == ScopeReviewed {
		q = q.Where(sq.NotEq{"a.id": nil})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []ExportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("export rows: %w", err)
	}
	return rows, nil
}

func (row ExportRow) record() []string {
	reviewedOn := ""
	if row.ReviewedOn.Valid {
		reviewedOn = row.ReviewedOn.Time.Format(time.DateTime)
	}
	return []string{
		strconv.FormatUint(uint64(row.PostID), 10),
		row.Username,
		row.Content,
		row.Sentiment,
		strconv.FormatFloat(row.Confidence, 'f', 2, 64),
		row.CreatedAt.Format(time.DateTime),
		strconv.FormatBool(row.Reviewed),
		row.AdminUsername.String,
		row.Comment.String,
		reviewedOn,
	}
}

func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const exportSheet = "Sentiment"

func WriteXLSX(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.PostID, row.Username, row.Content, row.Sentiment, row.Confidence,
			row.CreatedAt.Format(time.DateTime), row.Reviewed,
			row.AdminUsername.String, row.Comment.String, row.record()[9],
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// Write encodes rows in the requested format and returns its content type.
func Write(w io.Writer, format string, rows []ExportRow) (string, error) {
	switch format {
	case "", FormatCSV:
		return "text/csv", WriteCSV(w, rows)
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", WriteXLSX(w, rows)
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}
