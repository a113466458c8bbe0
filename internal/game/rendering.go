package game

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/hexwar/internal/common"
	"github.com/mitchelldurbincs/hexwar/internal/game/core"
)

const (
	blockedSymbol = "##"
	emptySymbol   = " ·"
	playerSymbols = "ABCDEF"
)

// RenderBoard draws the board as text, one line per row of r. Each tile is a
// two character token placed at column 2q+r, so neighbouring rows are offset
// by half a tile like the hex grid they come from.
//
//	##  blocked      · / 3   neutral without / with army
//	A5  player A with 5 army, '+' for 10 or more
func RenderBoard(b *core.Board, useColor bool) string {
	tiles := b.Tiles()
	if len(tiles) == 0 {
		return ""
	}

	rows := make(map[int][]core.Tile)
	minCol := 0
	first := true
	for _, t := range tiles {
		rows[t.Coord.R] = append(rows[t.Coord.R], t)
		if col := 2*t.Coord.Q + t.Coord.R; first || col < minCol {
			minCol = col
			first = false
		}
	}
	rs := make([]int, 0, len(rows))
	for r := range rows {
		rs = append(rs, r)
	}
	sort.Ints(rs)

	var sb strings.Builder
	sb.Grow(len(tiles)*16 + 64)
	for _, r := range rs {
		row := rows[r]
		sort.Slice(row, func(i, j int) bool { return row[i].Coord.Q < row[j].Coord.Q })

		pos := 0
		for _, t := range row {
			col := (2*t.Coord.Q + t.Coord.R - minCol) * 2
			if col > pos {
				sb.WriteString(strings.Repeat(" ", col-pos))
				pos = col
			}
			writeTile(&sb, t, useColor)
			pos += 2
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n" + blockedSymbol + "=blocked ·=neutral A-F=players\n")
	return sb.String()
}

func writeTile(sb *strings.Builder, t core.Tile, useColor bool) {
	var color, symbol string
	switch t.Owner.Kind() {
	case core.OwnerUnused:
		symbol = "  "
	case core.OwnerBlocked:
		color, symbol = common.ColorGray, blockedSymbol
	case core.OwnerNeutral:
		color = common.ColorGray
		if t.Army == 0 {
			symbol = emptySymbol
		} else {
			symbol = " " + armyDigit(t.Army)
		}
	case core.OwnerPlayer:
		id, _ := t.Owner.PlayerID()
		color = common.PlayerANSI(id)
		letter := "?"
		if id >= 1 && id <= len(playerSymbols) {
			letter = string(playerSymbols[id-1])
		}
		symbol = letter + armyDigit(t.Army)
	}

	if useColor && color != "" {
		sb.WriteString(color)
		sb.WriteString(symbol)
		sb.WriteString(common.ColorReset)
		return
	}
	sb.WriteString(symbol)
}

func armyDigit(army int) string {
	if army >= 10 {
		return "+"
	}
	return strconv.Itoa(army)
}

// Render draws the session's board
func (s *Session) Render(useColor bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RenderBoard(s.board, useColor)
}
