package stats

import (
	"fmt"
	"strconv"
	"strings"
)

// franchise is the name an abbreviation carried over a span of seasons,
// given by their start years. A zero bound is open.
type franchise struct {
	name     string
	from, to int
}

// teamNames maps the provider's three-letter abbreviations to the full team
// names it reports for each season. Spans are ordered oldest first.
var teamNames = map[string][]franchise{
	"ATL": {{name: "Atlanta Hawks"}},
	"BKN": {{name: "Brooklyn Nets", from: 2012}},
	"BOS": {{name: "Boston Celtics"}},
	"CHA": {{name: "Charlotte Bobcats", from: 2004, to: 2013}, {name: "Charlotte Hornets", from: 2014}},
	"CHH": {{name: "Charlotte Hornets", to: 2001}},
	"CHI": {{name: "Chicago Bulls"}},
	"CLE": {{name: "Cleveland Cavaliers"}},
	"DAL": {{name: "Dallas Mavericks"}},
	"DEN": {{name: "Denver Nuggets"}},
	"DET": {{name: "Detroit Pistons"}},
	"GSW": {{name: "Golden State Warriors"}},
	"HOU": {{name: "Houston Rockets"}},
	"IND": {{name: "Indiana Pacers"}},
	"LAC": {{name: "Los Angeles Clippers", to: 2014}, {name: "LA Clippers", from: 2015}},
	"LAL": {{name: "Los Angeles Lakers"}},
	"MEM": {{name: "Memphis Grizzlies", from: 2001}},
	"MIA": {{name: "Miami Heat"}},
	"MIL": {{name: "Milwaukee Bucks"}},
	"MIN": {{name: "Minnesota Timberwolves"}},
	"NJN": {{name: "New Jersey Nets", to: 2011}},
	"NOH": {{name: "New Orleans Hornets", from: 2002, to: 2004}, {name: "New Orleans Hornets", from: 2007, to: 2012}},
	"NOK": {{name: "New Orleans/Oklahoma City Hornets", from: 2005, to: 2006}},
	"NOP": {{name: "New Orleans Pelicans", from: 2013}},
	"NYK": {{name: "New York Knicks"}},
	"OKC": {{name: "Oklahoma City Thunder", from: 2008}},
	"ORL": {{name: "Orlando Magic"}},
	"PHI": {{name: "Philadelphia 76ers"}},
	"PHX": {{name: "Phoenix Suns"}},
	"POR": {{name: "Portland Trail Blazers"}},
	"SAC": {{name: "Sacramento Kings"}},
	"SAS": {{name: "San Antonio Spurs"}},
	"SEA": {{name: "Seattle SuperSonics", to: 2007}},
	"TOR": {{name: "Toronto Raptors"}},
	"UTA": {{name: "Utah Jazz"}},
	"VAN": {{name: "Vancouver Grizzlies", to: 2000}},
	"WAS": {{name: "Washington Bullets", to: 1996}, {name: "Washington Wizards", from: 1997}},
}

// TeamName resolves a team abbreviation to the name it carried in season
// ("2010-11"). An empty or malformed season resolves to the latest name.
func TeamName(abbr, season string) (string, bool) {
	spans, ok := teamNames[strings.ToUpper(strings.TrimSpace(abbr))]
	if !ok {
		return "", false
	}
	year := seasonStart(season)
	if year == 0 {
		return spans[len(spans)-1].name, true
	}
	for _, f := range spans {
		if (f.from == 0 || year >= f.from) && (f.to == 0 || year <= f.to) {
			return f.name, true
		}
	}
	return "", false
}

func seasonStart(season string) int {
	if len(season) < 4 {
		return 0
	}
	y, err := strconv.Atoi(season[:4])
	if err != nil {
		return 0
	}
	return y
}

// parseMatchup splits a matchup cell such as "LAL @ BOS" (away) or
// "LAL vs. BOS" (home) into the opponent's full name for season and the
// home flag.
func parseMatchup(s, season string) (opponent string, home bool, err error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return "", false, fmt.Errorf("malformed matchup %q", s)
	}
	opponent, ok := TeamName(fields[2], season)
	if !ok {
		return "", false, fmt.Errorf("matchup %q: unknown team abbreviation %q in %s", s, fields[2], season)
	}
	return opponent, fields[1] != "@", nil
}
