package features

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/nba-points/internal/model"
)

func TestWriteCSV(t *testing.T) {
	table, err := BuildTable(model.RegularSeason, fixtureInputs(), Config{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(table.Rows)+1)

	header := records[0]
	assert.Equal(t, []string{"SEASON_YEAR", "PLAYER_NAME", "TEAM_NAME", "GAME_ID", "MATCHUP", "WL", "PTS", "MIN", "B2B", "H/A"}, header[:10])
	assert.Equal(t, "30-34 ft. OPP_FG_PCT", header[len(header)-1])

	for _, rec := range records[1:] {
		assert.Len(t, rec, len(header))
	}
	first := records[1]
	r := table.Rows[0]
	assert.Equal(t, r.Player, first[1])
	assert.Equal(t, r.Matchup, first[4])
	assert.Equal(t, r.Outcome.String(), first[5])
}
