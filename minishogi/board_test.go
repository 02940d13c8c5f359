package minishogi

import (
	"math/rand"
	"reflect"
	"testing"
)

func mustCoord(t *testing.T, pos string) Coord {
	t.Helper()
	c, err := ParseCoord(pos)
	if err != nil {
		t.Fatalf("parse %q: %v", pos, err)
	}
	return c
}

func mustPlace(t *testing.T, b *Board, icon, pos string) PieceID {
	t.Helper()
	kind, owner, promoted, err := parseIcon(icon)
	if err != nil {
		t.Fatalf("icon %q: %v", icon, err)
	}
	id, err := b.Place(kind, owner, promoted, mustCoord(t, pos))
	if err != nil {
		t.Fatalf("place %s at %s: %v", icon, pos, err)
	}
	return id
}

func coordSet(cs []Coord) map[Coord]bool {
	out := make(map[Coord]bool, len(cs))
	for _, c := range cs {
		out[c] = true
	}
	return out
}

func recomputeHeatmap(b *Board, side Side) Heatmap {
	var h Heatmap
	for _, id := range b.players[side].pieces {
		for _, c := range b.ValidDsts(id, true) {
			h.add(c, 1)
		}
	}
	return h
}

func checkHeatmaps(t *testing.T, b *Board) {
	t.Helper()
	for _, side := range []Side{Lower, Upper} {
		got := b.Heatmap(side)
		want := recomputeHeatmap(b, side)
		if got != want {
			t.Fatalf("%s heatmap drifted\nboard:\n%s\ngot:\n%s\nwant:\n%s", side, b, got.String(), want.String())
		}
		king := b.King(side)
		attacked := b.Heatmap(side.Opponent()).At(king.Coords) > 0
		if b.IsChecked(side) != attacked {
			t.Fatalf("IsChecked(%s) = %t, heatmap says %t", side, b.IsChecked(side), attacked)
		}
	}
}

// checkPlacement verifies every piece is on the grid or in exactly one hand.
func checkPlacement(t *testing.T, b *Board) {
	t.Helper()
	onGrid := make(map[PieceID]int)
	for file := 0; file < BoardSize; file++ {
		for rank := 0; rank < BoardSize; rank++ {
			id := b.grid[file][rank]
			if id == NoPiece {
				continue
			}
			onGrid[id]++
			if p := b.piece(id); p.Coords != (Coord{file, rank}) {
				t.Fatalf("piece %v stored at %v", p, Coord{file, rank})
			}
		}
	}
	inHand := make(map[PieceID]int)
	for _, side := range []Side{Lower, Upper} {
		for _, id := range b.players[side].captures {
			inHand[id]++
			if p := b.piece(id); p.Coords != OffBoard || p.Owner != side || p.Promoted {
				t.Fatalf("captured piece %v held by %s", p, side)
			}
		}
	}
	var blockable int
	for i := range b.pieces {
		p := &b.pieces[i]
		if onGrid[p.ID]+inHand[p.ID] != 1 {
			t.Fatalf("piece %v: on grid %d times, in hand %d times", p, onGrid[p.ID], inHand[p.ID])
		}
		if onGrid[p.ID] == 1 && p.Blockable() {
			blockable++
		}
	}
	if blockable != len(b.blockable) {
		t.Fatalf("blockable cache has %d pieces, board has %d", len(b.blockable), blockable)
	}
}

func TestDefaultBoard(t *testing.T) {
	b := NewDefaultBoard()

	want := "" +
		"5 | R| B| S| G| K|\n" +
		"4 |__|__|__|__| P|\n" +
		"3 |__|__|__|__|__|\n" +
		"2 | p|__|__|__|__|\n" +
		"1 | k| g| s| b| r|\n" +
		"    a  b  c  d  e\n"
	if got := b.String(); got != want {
		t.Fatalf("unexpected board:\n%s", got)
	}
	if b.Turn() != Lower {
		t.Fatalf("expected lower to move first, got %s", b.Turn())
	}
	if k := b.King(Upper); k.Coords != mustCoord(t, "e5") {
		t.Fatalf("UPPER king at %s", k.Coords)
	}
	if len(b.Pieces(Lower)) != 6 || len(b.Pieces(Upper)) != 6 {
		t.Fatalf("expected 6 pieces per side")
	}
	checkHeatmaps(t, b)
	checkPlacement(t, b)
}

func TestHeatmapMatchesRecomputedCoverage(t *testing.T) {
	type action struct {
		id   PieceID
		dst  Coord
		drop bool
	}

	for seed := int64(1); seed <= 6; seed++ {
		rng := rand.New(rand.NewSource(seed))
		b := NewDefaultBoard()

		for step := 0; step < 120; step++ {
			side := b.Turn()
			var actions []action
			for _, id := range b.players[side].pieces {
				for _, dst := range b.ValidDsts(id, false) {
					if p, ok := b.PieceAt(dst); ok && p.Kind == King {
						continue
					}
					actions = append(actions, action{id: id, dst: dst})
				}
			}
			for _, id := range b.players[side].captures {
				for file := 0; file < BoardSize; file++ {
					for rank := 0; rank < BoardSize; rank++ {
						if b.grid[file][rank] == NoPiece {
							actions = append(actions, action{id: id, dst: Coord{file, rank}, drop: true})
						}
					}
				}
			}
			if len(actions) == 0 {
				break
			}

			a := actions[rng.Intn(len(actions))]
			if a.drop {
				b.DropPiece(side, a.id, a.dst)
			} else if !b.MovePiece(a.id, a.dst) {
				t.Fatalf("seed %d step %d: move of %v to %s rejected", seed, step, b.Piece(a.id), a.dst)
			} else if rng.Intn(3) == 0 {
				b.Promote(a.id)
			}
			b.SwitchTurn()

			checkHeatmaps(t, b)
			checkPlacement(t, b)
		}
	}
}

func TestCloneEqualsOriginal(t *testing.T) {
	b := NewDefaultBoard()
	if !b.MovePiece(b.King(Lower).ID, mustCoord(t, "b2")) {
		t.Fatalf("king move rejected")
	}
	b.SwitchTurn()
	b.AddCapture(Pawn, Upper)

	clone := b.Clone()
	if !reflect.DeepEqual(b, clone) {
		t.Fatalf("clone differs from original")
	}

	pawn, _ := clone.PieceAt(mustCoord(t, "e4"))
	if !clone.MovePiece(pawn.ID, mustCoord(t, "e3")) {
		t.Fatalf("move on clone rejected")
	}
	if _, ok := b.PieceAt(mustCoord(t, "e3")); ok {
		t.Fatalf("move on clone leaked into original")
	}
	if p := b.Piece(pawn.ID); p.Coords != mustCoord(t, "e4") {
		t.Fatalf("original pawn moved to %s", p.Coords)
	}
	if clone.Piece(pawn.ID).ID != b.Piece(pawn.ID).ID {
		t.Fatalf("clone lost piece identity")
	}
}

func TestPlaceRejectsOccupiedSquare(t *testing.T) {
	b := NewDefaultBoard()
	before := b.Clone()
	if _, err := b.Place(Pawn, Lower, false, mustCoord(t, "a1")); err == nil {
		t.Fatalf("expected error placing on occupied square")
	}
	if _, err := b.Place(King, Lower, true, mustCoord(t, "c3")); err == nil {
		t.Fatalf("expected error placing a promoted king")
	}
	if !reflect.DeepEqual(b, before) {
		t.Fatalf("failed placement changed the board")
	}
}

func TestKingPanicsWhenMissing(t *testing.T) {
	b := NewBoard()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for missing king")
		}
	}()
	b.IsChecked(Lower)
}

func TestHeatmapReadsFromReturnedValue(t *testing.T) {
	b := NewBoard()
	mustPlace(t, b, "k", "a1")
	mustPlace(t, b, "K", "e5")
	mustPlace(t, b, "r", "c1")

	tests := []struct {
		side Side
		pos  string
		want int
	}{
		{Lower, "c5", 1},
		{Lower, "b2", 1},
		{Lower, "b1", 2},
		{Lower, "a1", 1},
		{Lower, "e5", 0},
		{Upper, "d4", 1},
		{Upper, "c1", 0},
	}
	for _, tt := range tests {
		if got := b.Heatmap(tt.side).At(mustCoord(t, tt.pos)); got != tt.want {
			t.Errorf("%s heatmap at %s = %d, want %d", tt.side, tt.pos, got, tt.want)
		}
	}

	want := "" +
		"0 0 0 1 0\n" +
		"0 0 0 1 1\n" +
		"0 0 0 0 0\n" +
		"0 0 0 0 0\n" +
		"0 0 0 0 0\n"
	if got := b.Heatmap(Upper).String(); got != want {
		t.Fatalf("UPPER heatmap:\n%s", got)
	}
}
