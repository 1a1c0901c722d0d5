package models

import "ncaam_v1/scraper/internal/reconcile"

// Player is one master-table row for a player, recorded the first time they
// appear in a box score. FirstSeenTeamID is the team they were observed with
// at that moment; it is never revised, even after a transfer.
type Player struct {
	PlayerID        string
	UID             string
	GUID            string
	DisplayName     string
	ShortName       string
	Position        string
	Jersey          string
	Headshot        string
	FirstSeenTeamID string
}

// PlayerColumns is the canonical column order for the players master table.
var PlayerColumns = []string{
	"player_id", "uid", "guid", "displayName", "shortName",
	"position", "jersey", "headshot", "first_seen_team_id",
}

// ToRecord flattens the player into a master-table row.
func (p *Player) ToRecord() reconcile.Record {
	return reconcile.Record{
		"player_id":          p.PlayerID,
		"uid":                p.UID,
		"guid":               p.GUID,
		"displayName":        p.DisplayName,
		"shortName":          p.ShortName,
		"position":           p.Position,
		"jersey":             p.Jersey,
		"headshot":           p.Headshot,
		"first_seen_team_id": p.FirstSeenTeamID,
	}
}
