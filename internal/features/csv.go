package features

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pable/nba-points/internal/model"
)

// CSVHeader returns the identity, label and feature columns of t in file order.
func CSVHeader(t *model.FeatureTable) []string {
	header := make([]string, 0, len(IdentityColumns)+len(LabelColumns)+len(t.Columns))
	header = append(header, IdentityColumns...)
	header = append(header, LabelColumns...)
	return append(header, t.Columns...)
}

// WriteCSV writes t with a header row followed by one record per feature row.
func WriteCSV(w io.Writer, t *model.FeatureTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader(t)); err != nil {
		return err
	}
	record := make([]string, 0, len(IdentityColumns)+len(LabelColumns)+len(t.Columns))
	for _, r := range t.Rows {
		record = append(record[:0],
			r.Season, r.Player, r.Team, r.GameID, r.Matchup, r.Outcome.String(),
			formatFloat(r.Points), formatFloat(r.Minutes),
		)
		for _, v := range r.Values {
			record = append(record, formatFloat(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
