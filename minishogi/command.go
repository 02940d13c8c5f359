package minishogi

import (
	"fmt"
	"strings"
)

// CommandKind distinguishes board moves from drops.
type CommandKind int

const (
	MoveCommand CommandKind = iota
	DropCommand
)

// Command is a parsed "move <src> <dst> [promote]" or "drop <icon> <dst>".
type Command struct {
	Kind    CommandKind
	From    Coord // moves only
	To      Coord
	Promote bool // moves only
	Piece   Kind // drops only
}

// ParseCommand parses one command line. Any fourth token on a move requests
// promotion.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty", ErrInvalidCommand)
	}
	switch fields[0] {
	case "move":
		if len(fields) != 3 && len(fields) != 4 {
			return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, line)
		}
		from, err := ParseCoord(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
		}
		to, err := ParseCoord(fields[2])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
		}
		return Command{Kind: MoveCommand, From: from, To: to, Promote: len(fields) == 4}, nil
	case "drop":
		if len(fields) != 3 || len(fields[1]) != 1 {
			return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, line)
		}
		kind, ok := KindFromLetter(fields[1][0])
		if !ok {
			return Command{}, fmt.Errorf("%w: %w: %q", ErrInvalidCommand, ErrInvalidIcon, fields[1])
		}
		to, err := ParseCoord(fields[2])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
		}
		return Command{Kind: DropCommand, To: to, Piece: kind}, nil
	}
	return Command{}, fmt.Errorf("%w: unknown verb %q", ErrInvalidCommand, fields[0])
}

func (c Command) String() string {
	if c.Kind == DropCommand {
		return fmt.Sprintf("drop %c %s", lowerByte(c.Piece.Letter()), c.To)
	}
	if c.Promote {
		return fmt.Sprintf("move %s %s promote", c.From, c.To)
	}
	return fmt.Sprintf("move %s %s", c.From, c.To)
}
