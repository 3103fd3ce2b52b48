package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// maxBindParams stays under the 65535 bind-parameter limit of the wire protocol.
const maxBindParams = 60000

// bulkInsertTx inserts rows as multi-row VALUES statements, chunked to stay
// within the parameter limit. suffix is appended verbatim (typically an
// ON CONFLICT clause). It returns the number of rows affected.
func bulkInsertTx(ctx context.Context, tx *sql.Tx, table string, columns []string, suffix string, rows [][]interface{}) (int64, error) {
	var total int64
	for _, chunk := range chunkRows(rows, maxBindParams/len(columns)) {
		query, args, err := buildBulkInsert(table, columns, suffix, chunk)
		if err != nil {
			return total, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func chunkRows(rows [][]interface{}, size int) [][][]interface{} {
	if size < 1 {
		size = 1
	}
	var out [][][]interface{}
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

func buildBulkInsert(table string, columns []string, suffix string, rows [][]interface{}) (string, []interface{}, error) {
	perRow := len(columns)
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))
	args := make([]interface{}, 0, len(rows)*perRow)
	for i, row := range rows {
		if len(row) != perRow {
			return "", nil, fmt.Errorf("%s row %d: %d values for %d columns", table, i, len(row), perRow)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := 0; j < perRow; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*perRow+j+1)
		}
		sb.WriteByte(')')
		args = append(args, row...)
	}
	if suffix != "" {
		sb.WriteByte(' ')
		sb.WriteString(suffix)
	}
	return sb.String(), args, nil
}

// nullJSON maps an empty raw message to NULL.
func nullJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
