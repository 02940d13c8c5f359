package minishogi

import "slices"

// MoveKey names a piece by what the player sees: its icon and the square it
// moves from.
type MoveKey struct {
	Icon string
	From Coord
}

// IsChecked reports whether side's King stands on a square the opponent covers.
func (b *Board) IsChecked(side Side) bool {
	king := b.King(side)
	return b.players[side.Opponent()].heatmap.At(king.Coords) > 0
}

// IsCheckmated reports whether side is in check with no escape. Drop escapes
// are only considered when checkDrops is set.
func (b *Board) IsCheckmated(side Side, checkDrops bool) bool {
	if !b.IsChecked(side) {
		return false
	}
	if len(b.UncheckMoves(side)) > 0 {
		return false
	}
	return !checkDrops || len(b.UncheckDrops(side)) == 0
}

// EscapeSet holds every move and drop that takes a side out of check.
type EscapeSet struct {
	Moves map[MoveKey][]Coord
	Drops map[string][]Coord
}

// Empty reports whether there is no escape at all.
func (e EscapeSet) Empty() bool {
	return len(e.Moves) == 0 && len(e.Drops) == 0
}

// Escapes runs both probe sweeps once for side.
func (b *Board) Escapes(side Side) EscapeSet {
	return EscapeSet{Moves: b.UncheckMoves(side), Drops: b.UncheckDrops(side)}
}

// UncheckMoves tries every move of side's pieces on a scratch copy of the
// board and keeps those after which side is not in check.
func (b *Board) UncheckMoves(side Side) map[MoveKey][]Coord {
	escapes := make(map[MoveKey][]Coord)
	for _, id := range b.players[side].pieces {
		p := b.piece(id)
		for _, dst := range b.ValidDsts(id, false) {
			probe := b.Clone()
			if !probe.movePiece(id, dst, false) || probe.IsChecked(side) {
				continue
			}
			key := MoveKey{Icon: p.Icon(), From: p.Coords}
			escapes[key] = append(escapes[key], dst)
		}
	}
	return escapes
}

// UncheckDrops tries every captured piece of side on every square. Captured
// pieces of one kind are interchangeable, so results are keyed by icon.
func (b *Board) UncheckDrops(side Side) map[string][]Coord {
	escapes := make(map[string][]Coord)
	var tried []string
	for _, id := range b.players[side].captures {
		icon := b.piece(id).Icon()
		if slices.Contains(tried, icon) {
			continue
		}
		tried = append(tried, icon)
		for file := 0; file < BoardSize; file++ {
			for rank := 0; rank < BoardSize; rank++ {
				dst := Coord{file, rank}
				probe := b.Clone()
				if !probe.DropPiece(side, id, dst) || probe.IsChecked(side) {
					continue
				}
				escapes[icon] = append(escapes[icon], dst)
			}
		}
	}
	return escapes
}
