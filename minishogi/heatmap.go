package minishogi

import (
	"strconv"
	"strings"
)

// Heatmap counts, per cell, how many of one player's pieces reach that cell.
// Squares holding the player's own pieces count as covered.
type Heatmap [BoardSize][BoardSize]int

// At returns the coverage of c.
func (h Heatmap) At(c Coord) int {
	return h[c.File][c.Rank]
}

func (h *Heatmap) add(c Coord, delta int) {
	h[c.File][c.Rank] += delta
}

// String renders the map with rank 5 on top, like the board.
func (h Heatmap) String() string {
	var sb strings.Builder
	for rank := BoardSize - 1; rank >= 0; rank-- {
		for file := 0; file < BoardSize; file++ {
			if file > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(h[file][rank]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// updateHeatmap adds delta to every cell the piece covers, computed against
// the current grid.
func (b *Board) updateHeatmap(id PieceID, delta int) {
	p := b.piece(id)
	h := &b.players[p.Owner].heatmap
	for _, dst := range b.ValidDsts(id, true) {
		h.add(dst, delta)
	}
}

func (b *Board) updateBlockable(delta int) {
	for _, id := range b.blockable {
		b.updateHeatmap(id, delta)
	}
}
