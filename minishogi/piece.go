package minishogi

import (
	"fmt"
	"strings"
)

// Kind is the type of a piece.
type Kind int

const (
	King Kind = iota
	GoldGeneral
	SilverGeneral
	Bishop
	Rook
	Pawn
)

func (k Kind) String() string {
	return []string{"King", "GoldGeneral", "SilverGeneral", "Bishop", "Rook", "Pawn"}[k]
}

// Letter is the upper-case icon letter of the kind.
func (k Kind) Letter() byte {
	return "KGSBRP"[k]
}

// KindFromLetter maps an icon letter (either case) to a kind.
func KindFromLetter(letter byte) (Kind, bool) {
	i := strings.IndexByte("KGSBRP", upperByte(letter))
	if i < 0 {
		return 0, false
	}
	return Kind(i), true
}

// Blockable reports whether the kind moves along rays that other pieces obstruct.
func (k Kind) Blockable() bool {
	return k == Bishop || k == Rook
}

// Promotable reports whether the kind has a promoted form.
func (k Kind) Promotable() bool {
	return k != King && k != GoldGeneral
}

// PieceID is the stable identity of a piece. Zero is never a valid id.
type PieceID int

// NoPiece marks an empty grid cell.
const NoPiece PieceID = 0

// moveTable holds forward-relative movement for a kind.
type moveTable struct {
	steps []Coord
	rays  [][]Coord
}

var kingSteps = []Coord{
	{-1, 1}, {0, 1}, {1, 1}, {1, 0},
	{1, -1}, {0, -1}, {-1, -1}, {-1, 0},
}

var goldSteps = []Coord{
	{-1, 1}, {0, 1}, {1, 1}, {1, 0},
	{0, -1}, {-1, 0},
}

var silverSteps = []Coord{
	{-1, 1}, {0, 1}, {1, 1},
	{1, -1}, {-1, -1},
}

func ray(df, dr int) []Coord {
	out := make([]Coord, 0, BoardSize-1)
	for i := 1; i < BoardSize; i++ {
		out = append(out, Coord{df * i, dr * i})
	}
	return out
}

var baseTables = [...]moveTable{
	King:          {steps: kingSteps},
	GoldGeneral:   {steps: goldSteps},
	SilverGeneral: {steps: silverSteps},
	Bishop:        {rays: [][]Coord{ray(1, 1), ray(-1, -1), ray(1, -1), ray(-1, 1)}},
	Rook:          {rays: [][]Coord{ray(0, 1), ray(1, 0), ray(0, -1), ray(-1, 0)}},
	Pawn:          {steps: []Coord{{0, 1}}},
}

var promotedTables = [...]moveTable{
	SilverGeneral: {steps: goldSteps},
	Bishop:        {steps: kingSteps, rays: baseTables[Bishop].rays},
	Rook:          {steps: kingSteps, rays: baseTables[Rook].rays},
	Pawn:          {steps: goldSteps},
}

// Piece is a single minishogi piece. Two pieces are the same piece iff their
// IDs match, whatever their kind, owner or position.
type Piece struct {
	ID       PieceID
	Kind     Kind
	Owner    Side
	Coords   Coord
	Promoted bool
}

func (p *Piece) table() moveTable {
	if p.Promoted {
		return promotedTables[p.Kind]
	}
	return baseTables[p.Kind]
}

// Steps returns the single-step offsets that are reachable regardless of
// intervening pieces, in the piece's forward-relative frame.
func (p *Piece) Steps() []Coord {
	return p.table().steps
}

// Rays returns the ordered near-to-far offset sequences that stop at the
// first occupied square.
func (p *Piece) Rays() [][]Coord {
	return p.table().rays
}

// Blockable reports whether the piece's moves can be obstructed.
func (p *Piece) Blockable() bool {
	return p.Kind.Blockable()
}

// Promote upgrades the piece's moves. It reports false and changes nothing
// for kinds without a promoted form or pieces already promoted.
func (p *Piece) Promote() bool {
	if !p.Kind.Promotable() || p.Promoted {
		return false
	}
	p.Promoted = true
	return true
}

// Demote restores the base moves. Only used on capture.
func (p *Piece) Demote() {
	p.Promoted = false
}

// Icon renders the piece: upper case for Upper, lower case for Lower, with a
// leading '+' once promoted.
func (p *Piece) Icon() string {
	letter := p.Kind.Letter()
	if p.Owner == Lower {
		letter = lowerByte(letter)
	}
	if p.Promoted {
		return "+" + string(letter)
	}
	return string(letter)
}

func (p Piece) String() string {
	return fmt.Sprintf("%s@%s#%d", p.Icon(), p.Coords, p.ID)
}

// parseIcon decodes "[+]letter". Case selects the owner.
func parseIcon(icon string) (Kind, Side, bool, error) {
	promoted := strings.HasPrefix(icon, "+")
	letters := strings.TrimPrefix(icon, "+")
	if len(letters) != 1 {
		return 0, Lower, false, fmt.Errorf("%w: %q", ErrInvalidIcon, icon)
	}
	kind, ok := KindFromLetter(letters[0])
	if !ok {
		return 0, Lower, false, fmt.Errorf("%w: %q", ErrInvalidIcon, icon)
	}
	if promoted && !kind.Promotable() {
		return 0, Lower, false, fmt.Errorf("%w: %q cannot be promoted", ErrInvalidIcon, icon)
	}
	owner := Lower
	if letters[0] >= 'A' && letters[0] <= 'Z' {
		owner = Upper
	}
	return kind, owner, promoted, nil
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
