package minishogi

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

const sampleSetup = `k a1
K e5
+r c3
P e4
g b1

[S P]
[b]

move c3 c4
drop b d2
`

func TestParseSetup(t *testing.T) {
	s, err := ParseSetup(strings.NewReader(sampleSetup))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(s.Pieces) != 5 {
		t.Fatalf("expected 5 pieces, got %d", len(s.Pieces))
	}
	if s.Pieces[2] != (Placement{Icon: "+r", Position: mustCoord(t, "c3")}) {
		t.Fatalf("unexpected third placement: %+v", s.Pieces[2])
	}
	if !reflect.DeepEqual(s.UpperCaptures, []string{"S", "P"}) {
		t.Fatalf("UPPER captures = %v", s.UpperCaptures)
	}
	if !reflect.DeepEqual(s.LowerCaptures, []string{"b"}) {
		t.Fatalf("lower captures = %v", s.LowerCaptures)
	}
	if !reflect.DeepEqual(s.Commands, []string{"move c3 c4", "drop b d2"}) {
		t.Fatalf("commands = %v", s.Commands)
	}
	if got := s.String(); got != sampleSetup {
		t.Fatalf("round trip mismatch:\n%s", got)
	}

	b, err := s.Board()
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	rook, ok := b.PieceAt(mustCoord(t, "c3"))
	if !ok || rook.Kind != Rook || !rook.Promoted || rook.Owner != Lower {
		t.Fatalf("unexpected piece on c3: %+v", rook)
	}
	if got := b.CapturesString(Upper); got != "[S P]" {
		t.Fatalf("UPPER hand = %s", got)
	}
	if got := b.CapturesString(Lower); got != "[b]" {
		t.Fatalf("lower hand = %s", got)
	}
	checkHeatmaps(t, b)
	checkPlacement(t, b)
}

func TestParseSetupUTF16(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(sampleSetup)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s, err := ParseSetup(strings.NewReader(encoded))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := s.String(); got != sampleSetup {
		t.Fatalf("UTF-16 setup decoded to:\n%s", got)
	}
}

func TestDefaultSetupBuildsDefaultBoard(t *testing.T) {
	b, err := DefaultSetup().Board()
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if !reflect.DeepEqual(b, NewDefaultBoard()) {
		t.Fatalf("default setup differs from default board:\n%s", b)
	}
}

func TestParseSetupErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no captures", "k a1\nK e5\n"},
		{"bad position", "k a6\nK e5\n\n[]\n[]\n"},
		{"bad icon", "x a1\nK e5\n\n[]\n[]\n"},
		{"promoted king", "+k a1\nK e5\n\n[]\n[]\n"},
		{"unbracketed captures", "k a1\nK e5\n\nP\n[]\n"},
		{"king in hand", "k a1\nK e5\n\n[K]\n[]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSetup(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidSetup) {
				t.Fatalf("expected ErrInvalidSetup, got %v", err)
			}
		})
	}
}

func TestSetupBoardErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing king", "k a1\n\n[]\n[]\n"},
		{"two kings", "k a1\nk b1\nK e5\n\n[]\n[]\n"},
		{"same square", "k a1\nK e5\np a1\n\n[]\n[]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSetup(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, err := s.Board(); !errors.Is(err, ErrInvalidSetup) {
				t.Fatalf("expected ErrInvalidSetup, got %v", err)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"move a2 a3", Command{Kind: MoveCommand, From: Coord{0, 1}, To: Coord{0, 2}}},
		{"move c4 c5 promote", Command{Kind: MoveCommand, From: Coord{2, 3}, To: Coord{2, 4}, Promote: true}},
		{"  drop p c3 ", Command{Kind: DropCommand, To: Coord{2, 2}, Piece: Pawn}},
		{"drop S e1", Command{Kind: DropCommand, To: Coord{4, 0}, Piece: SilverGeneral}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}

	bad := []string{"", "jump a1 a2", "move a1", "move a1 a9", "move a1 a2 b c", "drop x c3", "drop pp c3", "drop p"}
	for _, line := range bad {
		if _, err := ParseCommand(line); !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("ParseCommand(%q) error = %v, want ErrInvalidCommand", line, err)
		}
	}
}

func TestCommandString(t *testing.T) {
	for _, line := range []string{"move a2 a3", "move c4 c5 promote", "drop g b2"} {
		cmd, err := ParseCommand(line)
		if err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}
		if got := cmd.String(); got != line {
			t.Errorf("String() = %q, want %q", got, line)
		}
	}
}
