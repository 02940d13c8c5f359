package minishogi

// DefaultMoveLimit is the number of moves each player may make before the
// game is declared a tie.
const DefaultMoveLimit = 200

const (
	ReasonIllegalMove = "Illegal move."
	ReasonCheckmate   = "Checkmate."
	ReasonTooMany     = "Tie game.  Too many moves."
)

// Outcome reports what a command did and where the game stands after it.
type Outcome struct {
	Legal   bool
	Command Command
	Mover   Side
	// InCheck and Escapes describe the side to move next.
	InCheck  bool
	Escapes  []string
	GameOver bool
	Tie      bool
	Winner   Side
	Reason   string
}

// Game sequences turns over a Board and decides how the game ends.
type Game struct {
	board     *Board
	moveLimit int
	over      bool
	tie       bool
	winner    Side
	reason    string
}

type GameOption func(*Game)

// WithMoveLimit sets how many moves each player may make before a tie.
func WithMoveLimit(n int) GameOption {
	return func(g *Game) {
		g.moveLimit = n
	}
}

// NewGame starts a game from b, with b.Turn() to move.
func NewGame(b *Board, opts ...GameOption) *Game {
	g := &Game{board: b, moveLimit: DefaultMoveLimit}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Game) Board() *Board { return g.board }

func (g *Game) Over() bool { return g.over }

// Result returns the winner, or tie, and the reason once the game is over.
func (g *Game) Result() (winner Side, tie bool, reason string) {
	return g.winner, g.tie, g.reason
}

// Apply plays cmd for the side to move. An illegal command loses the game.
func (g *Game) Apply(cmd Command) Outcome {
	if g.over {
		return g.outcome(Outcome{Command: cmd, Mover: g.board.Turn()})
	}

	side := g.board.Turn()
	var ok bool
	switch cmd.Kind {
	case MoveCommand:
		ok = g.applyMove(side, cmd)
	case DropCommand:
		ok = g.applyDrop(side, cmd)
	}
	if !ok {
		log.Info("illegal command", "player", side, "command", cmd.String())
		return g.Forfeit(cmd)
	}

	g.board.players[side].moves++
	g.board.SwitchTurn()
	next := side.Opponent()

	out := Outcome{Legal: true, Command: cmd, Mover: side}
	if g.board.IsChecked(next) {
		out.InCheck = true
		if escapes := g.board.Escapes(next); escapes.Empty() {
			g.finish(side, ReasonCheckmate)
		} else {
			out.Escapes = escapes.Commands()
		}
	}
	if !g.over && g.board.Moves(Lower) >= g.moveLimit && g.board.Moves(Upper) >= g.moveLimit {
		g.over, g.tie, g.reason = true, true, ReasonTooMany
	}
	return g.outcome(out)
}

// Forfeit ends the game against the side to move, as for an illegal command.
func (g *Game) Forfeit(cmd Command) Outcome {
	side := g.board.Turn()
	if !g.over {
		g.finish(side.Opponent(), ReasonIllegalMove)
	}
	return g.outcome(Outcome{Command: cmd, Mover: side})
}

func (g *Game) finish(winner Side, reason string) {
	g.over, g.winner, g.reason = true, winner, reason
	log.Info("game over", "winner", winner, "reason", reason)
}

func (g *Game) outcome(out Outcome) Outcome {
	out.GameOver = g.over
	out.Tie = g.tie
	out.Winner = g.winner
	out.Reason = g.reason
	return out
}

// applyMove checks the move on a copy first, so a rejected move never
// touches the real board. A move that leaves the mover in check is rejected.
func (g *Game) applyMove(side Side, cmd Command) bool {
	b := g.board
	src, ok := b.PieceAt(cmd.From)
	if !ok || src.Owner != side {
		return false
	}
	if cmd.Promote && !b.CanPromote(src.ID, cmd.From, cmd.To) {
		return false
	}

	probe := b.Clone()
	if !probe.MovePiece(src.ID, cmd.To) || probe.IsChecked(side) {
		return false
	}

	b.MovePiece(src.ID, cmd.To)
	forced := src.Kind == Pawn && !src.Promoted && cmd.To.Rank == side.FarRank()
	if cmd.Promote || forced {
		b.Promote(src.ID)
	}
	return true
}

func (g *Game) applyDrop(side Side, cmd Command) bool {
	b := g.board
	id := NoPiece
	for _, cid := range b.players[side].captures {
		if b.piece(cid).Kind == cmd.Piece {
			id = cid
			break
		}
	}
	if id == NoPiece {
		return false
	}

	probe := b.Clone()
	if !probe.DropPiece(side, id, cmd.To) || probe.IsChecked(side) {
		return false
	}
	return b.DropPiece(side, id, cmd.To)
}
