package minishogi

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Placement is one "<icon> <position>" line of a setup file.
type Placement struct {
	Icon     string
	Position Coord
}

// Setup is the content of a setup file: initial pieces, both hands, and the
// commands to replay from that position.
type Setup struct {
	Pieces        []Placement
	UpperCaptures []string
	LowerCaptures []string
	Commands      []string
}

// DefaultSetup describes the standard starting position with no commands.
func DefaultSetup() *Setup {
	return SetupFromBoard(NewDefaultBoard())
}

// SetupFromBoard describes b's pieces in creation order.
func SetupFromBoard(b *Board) *Setup {
	s := &Setup{}
	for i := range b.pieces {
		p := &b.pieces[i]
		if p.Coords.InBounds() {
			s.Pieces = append(s.Pieces, Placement{Icon: p.Icon(), Position: p.Coords})
		}
	}
	for _, p := range b.Captures(Upper) {
		s.UpperCaptures = append(s.UpperCaptures, p.Icon())
	}
	for _, p := range b.Captures(Lower) {
		s.LowerCaptures = append(s.LowerCaptures, p.Icon())
	}
	return s
}

// ParseSetup reads the setup file layout:
//
//	<icon> <position>      one per line, ended by a blank line
//	[<icon> ...]           UPPER captures
//	[<icon> ...]           lower captures
//	                       blank line
//	<command>              one per line
//
// UTF-8 and UTF-16 input with a byte order mark is accepted.
func ParseSetup(r io.Reader) (*Setup, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)

	s := &Setup{}
	line := 0
	next := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		line++
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		text, ok := next()
		if !ok {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("read setup: %w", err)
			}
			return nil, fmt.Errorf("%w: missing captures", ErrInvalidSetup)
		}
		if text == "" {
			break
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidSetup, line, text)
		}
		if _, _, _, err := parseIcon(fields[0]); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidSetup, line, err)
		}
		pos, err := ParseCoord(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidSetup, line, err)
		}
		s.Pieces = append(s.Pieces, Placement{Icon: fields[0], Position: pos})
	}

	for _, dst := range []*[]string{&s.UpperCaptures, &s.LowerCaptures} {
		text, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: missing captures", ErrInvalidSetup)
		}
		icons, err := parseCaptures(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidSetup, line, err)
		}
		*dst = icons
	}

	for {
		text, ok := next()
		if !ok {
			break
		}
		if text != "" {
			s.Commands = append(s.Commands, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read setup: %w", err)
	}
	log.Debug("parsed setup", "pieces", len(s.Pieces), "commands", len(s.Commands))
	return s, nil
}

func parseCaptures(text string) ([]string, error) {
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return nil, fmt.Errorf("%w: captures %q", ErrInvalidIcon, text)
	}
	icons := strings.Fields(text[1 : len(text)-1])
	for _, icon := range icons {
		kind, _, promoted, err := parseIcon(icon)
		if err != nil {
			return nil, err
		}
		if kind == King || promoted {
			return nil, fmt.Errorf("%w: %q cannot be held", ErrInvalidIcon, icon)
		}
	}
	return icons, nil
}

// Board builds the described position with Lower to move. Each side must
// have exactly one King.
func (s *Setup) Board() (*Board, error) {
	b := NewBoard()
	var kings [2]int
	for _, pl := range s.Pieces {
		kind, owner, promoted, err := parseIcon(pl.Icon)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
		}
		if _, err := b.Place(kind, owner, promoted, pl.Position); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
		}
		if kind == King {
			kings[owner]++
		}
	}
	if kings[Lower] != 1 || kings[Upper] != 1 {
		return nil, fmt.Errorf("%w: need one king per side, got lower=%d UPPER=%d", ErrInvalidSetup, kings[Lower], kings[Upper])
	}

	hands := []struct {
		side  Side
		icons []string
	}{{Upper, s.UpperCaptures}, {Lower, s.LowerCaptures}}
	for _, hand := range hands {
		for _, icon := range hand.icons {
			kind, _, promoted, err := parseIcon(icon)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
			}
			if kind == King || promoted {
				return nil, fmt.Errorf("%w: %q cannot be held", ErrInvalidSetup, icon)
			}
			b.AddCapture(kind, hand.side)
		}
	}
	return b, nil
}

// String writes the setup back in file layout.
func (s *Setup) String() string {
	var sb strings.Builder
	for _, pl := range s.Pieces {
		fmt.Fprintf(&sb, "%s %s\n", pl.Icon, pl.Position)
	}
	sb.WriteString("\n")
	sb.WriteString("[" + strings.Join(s.UpperCaptures, " ") + "]\n")
	sb.WriteString("[" + strings.Join(s.LowerCaptures, " ") + "]\n")
	sb.WriteString("\n")
	for _, cmd := range s.Commands {
		sb.WriteString(cmd + "\n")
	}
	return sb.String()
}
