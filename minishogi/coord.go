package minishogi

import "fmt"

// BoardSize is the number of files and ranks on a minishogi board.
const BoardSize = 5

// Side identifies one of the two players.
type Side int

const (
	Lower Side = iota
	Upper
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Lower {
		return Upper
	}
	return Lower
}

func (s Side) String() string {
	if s == Upper {
		return "UPPER"
	}
	return "lower"
}

// FarRank is the rank on which the side's pieces become eligible for promotion.
func (s Side) FarRank() int {
	if s == Upper {
		return 0
	}
	return BoardSize - 1
}

// Coord is a board-relative (file, rank) pair. a1 is (0, 0).
type Coord struct {
	File, Rank int
}

// OffBoard is the coordinate held by captured pieces.
var OffBoard = Coord{-1, -1}

// InBounds reports whether c lies on the board.
func (c Coord) InBounds() bool {
	return 0 <= c.File && c.File < BoardSize && 0 <= c.Rank && c.Rank < BoardSize
}

// String renders c as a position such as "c3". Off-board coordinates render as "--".
func (c Coord) String() string {
	if !c.InBounds() {
		return "--"
	}
	return fmt.Sprintf("%c%d", 'a'+c.File, c.Rank+1)
}

// ParseCoord parses a position such as "c3".
func ParseCoord(pos string) (Coord, error) {
	if len(pos) != 2 {
		return OffBoard, fmt.Errorf("%w: %q", ErrInvalidPosition, pos)
	}
	c := Coord{File: int(pos[0] - 'a'), Rank: int(pos[1] - '1')}
	if !c.InBounds() {
		return OffBoard, fmt.Errorf("%w: %q", ErrInvalidPosition, pos)
	}
	return c, nil
}

// offset applies a forward-relative offset for side. Upper faces Lower across
// the board, so its rank axis is flipped.
func offset(side Side, c Coord, d Coord) Coord {
	if side == Upper {
		return Coord{c.File + d.File, c.Rank - d.Rank}
	}
	return Coord{c.File + d.File, c.Rank + d.Rank}
}
