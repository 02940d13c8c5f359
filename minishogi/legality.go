package minishogi

import "slices"

// ValidDsts returns the squares the piece can reach. With countOwn, squares
// held by the piece's own side are included (they are defended, not
// reachable) and the King's "never into check" filter is skipped; the
// heatmap is built this way.
func (b *Board) ValidDsts(id PieceID, countOwn bool) []Coord {
	p := b.piece(id)
	if !p.Coords.InBounds() {
		return nil
	}

	var (
		dsts []Coord
		seen [BoardSize][BoardSize]bool
	)
	add := func(c Coord) {
		if !seen[c.File][c.Rank] {
			seen[c.File][c.Rank] = true
			dsts = append(dsts, c)
		}
	}

	for _, d := range p.Steps() {
		dst := offset(p.Owner, p.Coords, d)
		if b.isValidDst(p, dst, countOwn) {
			add(dst)
		}
	}
	for _, r := range p.Rays() {
		for _, d := range r {
			dst := offset(p.Owner, p.Coords, d)
			if !dst.InBounds() {
				break
			}
			if b.isValidDst(p, dst, countOwn) {
				add(dst)
			}
			if b.grid[dst.File][dst.Rank] != NoPiece {
				break
			}
		}
	}
	return dsts
}

func (b *Board) isValidDst(p *Piece, dst Coord, countOwn bool) bool {
	if !dst.InBounds() {
		return false
	}
	if occ := b.grid[dst.File][dst.Rank]; occ != NoPiece && !countOwn && b.piece(occ).Owner == p.Owner {
		return false
	}
	if p.Kind == King && !countOwn && b.players[p.Owner.Opponent()].heatmap.At(dst) > 0 {
		return false
	}
	return true
}

// CanPromote reports whether moving the piece from src to dst makes it
// eligible for promotion.
func (b *Board) CanPromote(id PieceID, src, dst Coord) bool {
	p := b.piece(id)
	if !p.Kind.Promotable() || p.Promoted {
		return false
	}
	far := p.Owner.FarRank()
	return src.Rank == far || dst.Rank == far
}

// Promote promotes an on-board piece and refreshes its coverage.
func (b *Board) Promote(id PieceID) bool {
	p := b.piece(id)
	if !p.Coords.InBounds() || !p.Kind.Promotable() || p.Promoted {
		return false
	}
	b.updateHeatmap(id, -1)
	p.Promote()
	b.updateHeatmap(id, 1)
	return true
}

// MovePiece moves the piece to dst on behalf of the side to move, capturing
// an opponent piece found there. It reports false and leaves the board
// untouched when the move is not legal.
func (b *Board) MovePiece(id PieceID, dst Coord) bool {
	return b.movePiece(id, dst, true)
}

func (b *Board) movePiece(id PieceID, dst Coord, enforceTurn bool) bool {
	p := b.piece(id)
	if !p.Coords.InBounds() {
		return false
	}
	if enforceTurn && p.Owner != b.turn {
		return false
	}
	if !slices.Contains(b.ValidDsts(id, false), dst) {
		return false
	}

	if target := b.grid[dst.File][dst.Rank]; target != NoPiece {
		if b.piece(target).Kind == King {
			return false
		}
		b.capturePiece(target, p.Owner)
	}
	b.removePiece(id)
	b.placePiece(id, dst)
	return true
}

// DropPiece puts a captured piece back on the board for side.
func (b *Board) DropPiece(side Side, id PieceID, dst Coord) bool {
	if !dst.InBounds() || b.grid[dst.File][dst.Rank] != NoPiece {
		return false
	}
	if !slices.Contains(b.players[side].captures, id) {
		return false
	}
	if b.piece(id).Kind == Pawn && !b.canDropPawn(side, id, dst) {
		return false
	}
	b.dropPiece(side, id, dst)
	return true
}

func (b *Board) dropPiece(side Side, id PieceID, dst Coord) {
	pl := &b.players[side]
	pl.captures = deleteID(pl.captures, id)
	b.piece(id).Owner = side
	b.placePiece(id, dst)
}

// canDropPawn applies the pawn-only drop rules: no drop on the far rank, no
// second unpromoted pawn on a file, and no drop that mates at once. The mate
// test only looks at the opponent's move escapes, not their drops.
func (b *Board) canDropPawn(side Side, id PieceID, dst Coord) bool {
	if b.CanPromote(id, b.piece(id).Coords, dst) {
		return false
	}
	for _, pid := range b.players[side].pieces {
		q := b.piece(pid)
		if q.Kind == Pawn && !q.Promoted && q.Coords.File == dst.File {
			return false
		}
	}

	probe := b.Clone()
	probe.dropPiece(side, id, dst)
	return !probe.IsCheckmated(side.Opponent(), false)
}
