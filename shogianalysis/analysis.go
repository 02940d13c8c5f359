package shogianalysis

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/walterschell/minishogi/minishogi"
)

var log = slog.Default().With("package", "shogianalysis")

type MoveAnalysis struct {
	MoveNumber int
	Player     string
	Command    string
	Legal      bool
	InCheck    bool
	Escapes    []string
	GameOver   bool
	Winner     string
	Result     string
	Board      string
	Captures   map[string]string
}

func (m *MoveAnalysis) String() string {
	return fmt.Sprintf("Move %d: %s %s (Legal: %t, Check: %t, Escapes: %d, Result: %s)",
		m.MoveNumber, m.Player, m.Command, m.Legal, m.InCheck, len(m.Escapes), m.Result)
}

// moveAnalysisJSON is the JSON representation of MoveAnalysis
type moveAnalysisJSON struct {
	MoveNumber int               `json:"moveNumber"`
	Player     string            `json:"player"`
	Command    string            `json:"command"`
	Legal      bool              `json:"legal"`
	InCheck    bool              `json:"inCheck"`
	Escapes    []string          `json:"escapes"`
	GameOver   bool              `json:"gameOver"`
	Winner     string            `json:"winner,omitempty"`
	Result     string            `json:"result,omitempty"`
	Board      string            `json:"board"`
	Captures   map[string]string `json:"captures"`
}

// MarshalJSON implements custom JSON serialization for MoveAnalysis
func (m *MoveAnalysis) MarshalJSON() ([]byte, error) {
	escapes := m.Escapes
	if escapes == nil {
		escapes = []string{}
	}
	return json.Marshal(moveAnalysisJSON{
		MoveNumber: m.MoveNumber,
		Player:     m.Player,
		Command:    m.Command,
		Legal:      m.Legal,
		InCheck:    m.InCheck,
		Escapes:    escapes,
		GameOver:   m.GameOver,
		Winner:     m.Winner,
		Result:     m.Result,
		Board:      m.Board,
		Captures:   m.Captures,
	})
}

type AnalyzeGameOptions struct {
	MoveLimit int
	Commands  []string
}

var defaultAnalyzeGameOptions = AnalyzeGameOptions{
	MoveLimit: minishogi.DefaultMoveLimit,
}

type AnalyzeGameOption func(*AnalyzeGameOptions)

func WithMoveLimit(limit int) AnalyzeGameOption {
	return func(opts *AnalyzeGameOptions) {
		opts.MoveLimit = limit
	}
}

// WithCommands appends commands to the ones listed in the setup.
func WithCommands(cmds ...string) AnalyzeGameOption {
	return func(opts *AnalyzeGameOptions) {
		opts.Commands = append(opts.Commands, cmds...)
	}
}

func newMoveAnalysis(ply int, line string, b *minishogi.Board, out minishogi.Outcome) *MoveAnalysis {
	analysis := &MoveAnalysis{
		MoveNumber: ply,
		Player:     out.Mover.String(),
		Command:    line,
		Legal:      out.Legal,
		InCheck:    out.InCheck,
		Escapes:    out.Escapes,
		GameOver:   out.GameOver,
		Result:     out.Reason,
		Board:      b.String(),
		Captures: map[string]string{
			minishogi.Upper.String(): b.CapturesString(minishogi.Upper),
			minishogi.Lower.String(): b.CapturesString(minishogi.Lower),
		},
	}
	if out.GameOver && !out.Tie {
		analysis.Winner = out.Winner.String()
	}
	return analysis
}

// AnalyzeGameStreaming replays a setup file command by command, sending one
// result per command through a channel. Replay stops at the end of the game.
func AnalyzeGameStreaming(setupText string, opts ...AnalyzeGameOption) (<-chan *MoveAnalysis, <-chan error) {
	analysisOpts := defaultAnalyzeGameOptions
	for _, opt := range opts {
		opt(&analysisOpts)
	}

	results := make(chan *MoveAnalysis)
	errc := make(chan error, 1)

	if strings.TrimSpace(setupText) == "" {
		errc <- fmt.Errorf("empty setup")
		close(results)
		close(errc)
		return results, errc
	}

	go func() {
		defer close(results)
		defer close(errc)

		log.Info("Parsing setup")
		setup, err := minishogi.ParseSetup(strings.NewReader(setupText))
		if err != nil {
			log.Error("Error parsing setup", "error", err)
			errc <- fmt.Errorf("error parsing setup: %w", err)
			return
		}
		board, err := setup.Board()
		if err != nil {
			log.Error("Error building board", "error", err)
			errc <- fmt.Errorf("error building board: %w", err)
			return
		}

		game := minishogi.NewGame(board, minishogi.WithMoveLimit(analysisOpts.MoveLimit))
		commands := append(setup.Commands, analysisOpts.Commands...)
		log.Info("Game created", "commands", len(commands))

		for i, line := range commands {
			if game.Over() {
				log.Info("Game over, ignoring remaining commands", "remaining", len(commands)-i)
				break
			}

			var out minishogi.Outcome
			cmd, err := minishogi.ParseCommand(line)
			if err != nil {
				log.Warn("Unparseable command", "error", err, "command", line)
				out = game.Forfeit(cmd)
			} else {
				out = game.Apply(cmd)
			}
			results <- newMoveAnalysis(i+1, line, board, out)
		}
	}()

	return results, errc
}

func AnalyzeGame(setupText string, opts ...AnalyzeGameOption) ([]MoveAnalysis, error) {
	movesChan, errChan := AnalyzeGameStreaming(setupText, opts...)

	results := make([]MoveAnalysis, 0)
	for move := range movesChan {
		results = append(results, *move)
	}

	if err := <-errChan; err != nil {
		return nil, err
	}

	log.Info("Analysis complete", "moves", len(results))
	return results, nil
}
