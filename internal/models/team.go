package models

import "ncaam_v1/scraper/internal/reconcile"

// Team is one master-table row for a team. Teams are enriched on first sight
// only; a later observation never overwrites an existing row.
type Team struct {
	TeamID           string
	UID              string
	Location         string
	Name             string // mascot / nickname
	Abbreviation     string
	DisplayName      string
	ShortDisplayName string
	Logo             string
}

// TeamColumns is the canonical column order for the teams master table.
var TeamColumns = []string{
	"team_id", "uid", "location", "name", "abbreviation",
	"displayName", "shortDisplayName", "logo",
}

// ToRecord flattens the team into a master-table row.
func (t *Team) ToRecord() reconcile.Record {
	return reconcile.Record{
		"team_id":          t.TeamID,
		"uid":              t.UID,
		"location":         t.Location,
		"name":             t.Name,
		"abbreviation":     t.Abbreviation,
		"displayName":      t.DisplayName,
		"shortDisplayName": t.ShortDisplayName,
		"logo":             t.Logo,
	}
}
