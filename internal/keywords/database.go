package keywords

import (
	"encoding/csv"
	"os"
	"strconv"

	"yammer/internal/services"
)

// Database accumulates per-transcript keyword tables column-wise: each
// source contributes a keyword column and a score column, headed by the
// source filename.
type Database struct {
	columns []column
}

type column struct {
	source   string
	keywords []ScoredKeyword
}

// Add appends one source's keyword table. Call order fixes column order.
func (db *Database) Add(source string, kws []ScoredKeyword) {
	db.columns = append(db.columns, column{source: source, keywords: kws})
}

// Sources returns the contributing filenames in column order.
func (db *Database) Sources() []string {
	out := make([]string, len(db.columns))
	for i, col := range db.columns {
		out[i] = col.source
	}
	return out
}

// Len reports how many sources contributed columns.
func (db *Database) Len() int {
	return len(db.columns)
}

// WriteCSV persists the database. Columns with fewer keywords than the
// longest are padded with empty cells.
func (db *Database) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "keywords", "write_database", "create keyword database", err)
	}
	defer file.Close()

	depth := 0
	for _, col := range db.columns {
		if len(col.keywords) > depth {
			depth = len(col.keywords)
		}
	}

	w := csv.NewWriter(file)
	header := make([]string, 0, 2*len(db.columns))
	for _, col := range db.columns {
		header = append(header, col.source+" keyword", col.source+" score")
	}
	if err := w.Write(header); err != nil {
		return services.Wrap(services.ErrExternalTool, "keywords", "write_database", "write header", err)
	}
	for row := 0; row < depth; row++ {
		record := make([]string, 0, 2*len(db.columns))
		for _, col := range db.columns {
			if row < len(col.keywords) {
				kw := col.keywords[row]
				record = append(record, kw.Keyword, strconv.FormatFloat(kw.Score, 'f', 6, 64))
			} else {
				record = append(record, "", "")
			}
		}
		if err := w.Write(record); err != nil {
			return services.Wrap(services.ErrExternalTool, "keywords", "write_database", "write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return services.Wrap(services.ErrExternalTool, "keywords", "write_database", "flush keyword database", err)
	}
	return nil
}
