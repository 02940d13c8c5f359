// Package minishogi implements the rules of 5×5 shogi: board state, legal
// moves and drops, attack heatmaps and check detection.
package minishogi

import (
	"fmt"
	"slices"
)

// Player is one side's bookkeeping. Pieces and captures hold piece ids.
type Player struct {
	Side     Side
	heatmap  Heatmap
	king     PieceID
	pieces   []PieceID
	captures []PieceID
	moves    int
}

// Board is a minishogi position. It owns every piece through an arena indexed
// by PieceID, so a Clone is a plain copy that keeps piece identities.
type Board struct {
	grid      [BoardSize][BoardSize]PieceID
	pieces    []Piece
	blockable []PieceID
	players   [2]Player
	turn      Side
}

// NewBoard returns an empty board with Lower to move.
func NewBoard() *Board {
	return &Board{
		players: [2]Player{{Side: Lower}, {Side: Upper}},
		turn:    Lower,
	}
}

// NewDefaultBoard returns the standard minishogi starting position.
func NewDefaultBoard() *Board {
	b := NewBoard()
	order := []Kind{King, GoldGeneral, SilverGeneral, Bishop, Rook}
	last := BoardSize - 1
	for i, kind := range order {
		b.mustPlace(kind, Upper, Coord{last - i, last})
		b.mustPlace(kind, Lower, Coord{i, 0})
	}
	b.mustPlace(Pawn, Upper, Coord{last, last - 1})
	b.mustPlace(Pawn, Lower, Coord{0, 1})
	return b
}

func (b *Board) mustPlace(kind Kind, owner Side, c Coord) {
	if _, err := b.Place(kind, owner, false, c); err != nil {
		panic(err)
	}
}

// Clone returns a deep copy. Piece ids are preserved.
func (b *Board) Clone() *Board {
	nb := *b
	nb.pieces = slices.Clone(b.pieces)
	nb.blockable = slices.Clone(b.blockable)
	for i := range nb.players {
		nb.players[i].pieces = slices.Clone(b.players[i].pieces)
		nb.players[i].captures = slices.Clone(b.players[i].captures)
	}
	return &nb
}

func (b *Board) newPiece(kind Kind, owner Side) PieceID {
	id := PieceID(len(b.pieces) + 1)
	b.pieces = append(b.pieces, Piece{
		ID:     id,
		Kind:   kind,
		Owner:  owner,
		Coords: OffBoard,
	})
	return id
}

func (b *Board) piece(id PieceID) *Piece {
	if id <= NoPiece || int(id) > len(b.pieces) {
		panic(fmt.Sprintf("minishogi: unknown piece id %d", id))
	}
	return &b.pieces[id-1]
}

// Place creates a piece and puts it on an empty square. It is used to build
// positions; game play goes through MovePiece and DropPiece.
func (b *Board) Place(kind Kind, owner Side, promoted bool, c Coord) (PieceID, error) {
	if !c.InBounds() {
		return NoPiece, fmt.Errorf("%w: %v", ErrInvalidPosition, c)
	}
	if b.grid[c.File][c.Rank] != NoPiece {
		return NoPiece, fmt.Errorf("%w: %s is occupied", ErrInvalidPosition, c)
	}
	if promoted && !kind.Promotable() {
		return NoPiece, fmt.Errorf("%w: %s cannot be promoted", ErrInvalidIcon, kind)
	}
	id := b.newPiece(kind, owner)
	b.piece(id).Promoted = promoted
	b.placePiece(id, c)
	return id, nil
}

// AddCapture creates a piece directly in owner's captures.
func (b *Board) AddCapture(kind Kind, owner Side) PieceID {
	id := b.newPiece(kind, owner)
	b.players[owner].captures = append(b.players[owner].captures, id)
	return id
}

// placePiece writes id into the grid at c. Blockable pieces are taken out of
// the heatmap before the write and put back after it, since the new piece may
// cut their rays.
func (b *Board) placePiece(id PieceID, c Coord) {
	p := b.piece(id)
	p.Coords = c

	b.updateBlockable(-1)
	b.grid[c.File][c.Rank] = id
	b.updateHeatmap(id, 1)
	b.updateBlockable(1)

	pl := &b.players[p.Owner]
	if p.Kind == King {
		pl.king = id
	}
	pl.pieces = append(pl.pieces, id)
	if p.Blockable() {
		b.blockable = append(b.blockable, id)
	}
}

// removePiece clears id from the grid, mirroring placePiece.
func (b *Board) removePiece(id PieceID) {
	p := b.piece(id)
	if p.Blockable() {
		b.blockable = deleteID(b.blockable, id)
	}

	b.updateBlockable(-1)
	b.grid[p.Coords.File][p.Coords.Rank] = NoPiece
	b.updateHeatmap(id, -1)
	b.updateBlockable(1)

	pl := &b.players[p.Owner]
	pl.pieces = deleteID(pl.pieces, id)
}

// capturePiece moves id off the board into captor's captures, demoted and
// relabelled.
func (b *Board) capturePiece(id PieceID, captor Side) {
	b.removePiece(id)
	p := b.piece(id)
	p.Demote()
	p.Owner = captor
	p.Coords = OffBoard
	b.players[captor].captures = append(b.players[captor].captures, id)
}

func deleteID(ids []PieceID, id PieceID) []PieceID {
	i := slices.Index(ids, id)
	if i < 0 {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}

// Turn returns the side to move.
func (b *Board) Turn() Side {
	return b.turn
}

// SwitchTurn hands the move to the other side.
func (b *Board) SwitchTurn() {
	b.turn = b.turn.Opponent()
}

// Piece returns a snapshot of the piece with the given id.
func (b *Board) Piece(id PieceID) Piece {
	return *b.piece(id)
}

// PieceAt returns the piece on c, if any.
func (b *Board) PieceAt(c Coord) (Piece, bool) {
	if !c.InBounds() {
		return Piece{}, false
	}
	id := b.grid[c.File][c.Rank]
	if id == NoPiece {
		return Piece{}, false
	}
	return *b.piece(id), true
}

// Pieces returns snapshots of side's pieces on the board.
func (b *Board) Pieces(side Side) []Piece {
	return b.snapshot(b.players[side].pieces)
}

// Captures returns snapshots of the pieces side holds in hand.
func (b *Board) Captures(side Side) []Piece {
	return b.snapshot(b.players[side].captures)
}

func (b *Board) snapshot(ids []PieceID) []Piece {
	out := make([]Piece, 0, len(ids))
	for _, id := range ids {
		out = append(out, *b.piece(id))
	}
	return out
}

// King returns side's King. Both Kings stay on the board for the whole game;
// a missing King is a programming error.
func (b *Board) King(side Side) Piece {
	id := b.players[side].king
	if id == NoPiece {
		panic(fmt.Sprintf("minishogi: %s has no king", side))
	}
	return *b.piece(id)
}

// Heatmap returns a copy of side's attack coverage.
func (b *Board) Heatmap(side Side) Heatmap {
	return b.players[side].heatmap
}

// Moves returns the number of moves side has made.
func (b *Board) Moves(side Side) int {
	return b.players[side].moves
}
