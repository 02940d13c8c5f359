package minishogi

import (
	"fmt"
	"sort"
	"strings"
)

// String renders the grid with rank 5 on top:
//
//	5 | R| B| S| G| K|
//	...
//	    a  b  c  d  e
func (b *Board) String() string {
	var sb strings.Builder
	for rank := BoardSize - 1; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d |", rank+1)
		for file := 0; file < BoardSize; file++ {
			id := b.grid[file][rank]
			switch {
			case id == NoPiece:
				sb.WriteString("__|")
			case b.piece(id).Promoted:
				sb.WriteString(b.piece(id).Icon() + "|")
			default:
				sb.WriteString(" " + b.piece(id).Icon() + "|")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("    a  b  c  d  e\n")
	return sb.String()
}

// CapturesString renders side's hand as "[p s]".
func (b *Board) CapturesString(side Side) string {
	icons := make([]string, 0, len(b.players[side].captures))
	for _, p := range b.Captures(side) {
		icons = append(icons, p.Icon())
	}
	return "[" + strings.Join(icons, " ") + "]"
}

// EscapeCommands lists, in sorted order, the commands that get side out of
// check: "move <src> <dst>" for moves and "drop <icon> <dst>" for drops.
func (b *Board) EscapeCommands(side Side) []string {
	return b.Escapes(side).Commands()
}

// Commands renders the set as sorted command strings.
func (e EscapeSet) Commands() []string {
	var out []string
	for key, dsts := range e.Moves {
		for _, dst := range dsts {
			out = append(out, fmt.Sprintf("move %s %s", key.From, dst))
		}
	}
	for icon, dsts := range e.Drops {
		for _, dst := range dsts {
			out = append(out, fmt.Sprintf("drop %s %s", strings.ToLower(icon), dst))
		}
	}
	sort.Strings(out)
	return out
}
