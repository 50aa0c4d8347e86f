package storage

import (
	"database/sql"

	"param-server/src/models"
)

func scanSeries(symbol string, rows *sql.Rows) (models.MPriceSeries, error) {
	series := models.MPriceSeries{Symbol: symbol}
	for rows.Next() {
		var p models.MPricePoint
		if err := rows.Scan(&p.Timestamp, &p.Close); err != nil {
			return models.MPriceSeries{}, err
		}
		series.Points = append(series.Points, p)
	}
	return series, rows.Err()
}

// -----------------------------------------------------------------------------

func scanSymbols(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
