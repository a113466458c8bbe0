package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/states"
)

const neutralPlayerID = "undefined"

// PlayerID is the JSON form of a tile owner: the string "undefined" for
// Neutral, 0 for Blocked and n for Player(n). Unused tiles are never written.
type PlayerID struct {
	Owner core.Owner
}

func (p PlayerID) MarshalJSON() ([]byte, error) {
	switch p.Owner.Kind() {
	case core.OwnerNeutral:
		return json.Marshal(neutralPlayerID)
	case core.OwnerBlocked:
		return []byte("0"), nil
	case core.OwnerPlayer:
		id, _ := p.Owner.PlayerID()
		return []byte(strconv.Itoa(id)), nil
	default:
		return nil, fmt.Errorf("owner %s has no document encoding", p.Owner)
	}
}

func (p *PlayerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		p.Owner = core.Neutral()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != neutralPlayerID {
			return fmt.Errorf("unknown player id %q", s)
		}
		p.Owner = core.Neutral()
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("player id: %w", err)
	}
	switch {
	case id == 0:
		p.Owner = core.Blocked()
	case id > 0:
		p.Owner = core.Player(id)
	default:
		return fmt.Errorf("negative player id %d", id)
	}
	return nil
}

// TileRecord is one tile in a saved document
type TileRecord struct {
	Q        int      `json:"q"`
	R        int      `json:"r"`
	PlayerID PlayerID `json:"playerId"`
	Army     int      `json:"army"`
}

// TurnRecord is the saved turn state. actionNumber and turnNumber are
// one-based.
type TurnRecord struct {
	ActivePlayer int `json:"activePlayer"`
	ActionNumber int `json:"actionNumber"`
	TurnNumber   int `json:"turnNumber"`
	RoundNumber  int `json:"roundNumber"`
}

// AutosaveDocument is the document stored under AutosaveKey
type AutosaveDocument struct {
	TurnState TurnRecord   `json:"turnState"`
	Tiles     []TileRecord `json:"tiles"`
}

// MapDocument is a named map template
type MapDocument struct {
	Name  string       `json:"name"`
	Date  int64        `json:"date"` // unix milliseconds
	Tiles []TileRecord `json:"tiles"`
}

var errNoTiles = errors.New("document has no tiles")

// EncodeTurn converts scheduler counters to their saved form
func EncodeTurn(ts states.TurnState) TurnRecord {
	return TurnRecord{
		ActivePlayer: ts.ActivePlayer,
		ActionNumber: ts.ActionsTaken + 1,
		TurnNumber:   ts.TurnsTaken + 1,
		RoundNumber:  ts.RoundNumber,
	}
}

// DecodeTurn converts a saved turn record back to scheduler counters
func DecodeTurn(tr TurnRecord) states.TurnState {
	return states.TurnState{
		ActivePlayer: tr.ActivePlayer,
		ActionsTaken: tr.ActionNumber - 1,
		TurnsTaken:   tr.TurnNumber - 1,
		RoundNumber:  tr.RoundNumber,
	}
}

// EncodeTiles lists every non-Unused tile in board order
func EncodeTiles(b *core.Board) []TileRecord {
	tiles := b.Tiles()
	out := make([]TileRecord, 0, len(tiles))
	for _, t := range tiles {
		if t.Owner.IsUnused() {
			continue
		}
		out = append(out, TileRecord{Q: t.Coord.Q, R: t.Coord.R, PlayerID: PlayerID{Owner: t.Owner}, Army: t.Army})
	}
	return out
}

// DecodeTiles builds the smallest hexagonal board containing every record,
// leaves tiles without a record Unused, and applies each record's owner then
// army. A record without a playerId is Neutral. A later record for the same
// coordinate wins.
func DecodeTiles(records []TileRecord, maxArmy int) (*core.Board, error) {
	if len(records) == 0 {
		return nil, errNoTiles
	}
	coords := make([]core.Coordinate, len(records))
	for i, rec := range records {
		if rec.Army < 0 {
			return nil, fmt.Errorf("tile %s has negative army %d", core.NewCoordinate(rec.Q, rec.R), rec.Army)
		}
		coords[i] = core.NewCoordinate(rec.Q, rec.R)
	}

	qRadius, rRadius := core.RegionBounds(coords)
	b := core.NewBoard(qRadius, rRadius, maxArmy)
	for i, rec := range records {
		idx, ok := b.IndexAt(coords[i])
		if !ok {
			return nil, fmt.Errorf("tile %s outside region (%d,%d): %w", coords[i], qRadius, rRadius, core.ErrTileNotFound)
		}
		owner := rec.PlayerID.Owner
		if owner.IsUnused() {
			// playerId was absent
			owner = core.Neutral()
		}
		b.SetOwner(idx, owner)
		b.SetArmy(idx, rec.Army)
	}
	return b, nil
}
