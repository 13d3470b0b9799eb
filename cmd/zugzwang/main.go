// Command zugzwang is a minimal line-oriented front end for the search
// core: it reads position/go/stop/quit commands from stdin and prints
// info/bestmove lines, a small slice of the UCI protocol, grounded on
// cmd/xionghan-local/main.go's flag-driven entry point and the info/
// bestmove line shapes SearchResult::print renders in
// original_source/src/engine.cpp.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"zugzwang/internal/chessboard"
	"zugzwang/internal/engineconfig"
	"zugzwang/internal/search"
)

func main() {
	configPath := flag.String("config", "", "optional engine config file (tt_memory_fraction, aspiration_init_delta, safety_factor)")
	verbose := flag.Bool("verbose", false, "log debug-level search progress to stderr")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := engineconfig.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load engine config")
	}

	session := NewSession(sessionConfig{
		ttMemoryFraction:    cfg.TTMemoryFraction,
		aspirationInitDelta: cfg.AspirationInitDelta,
		safetyFactor:        cfg.SafetyFactor,
	})

	runLoop(os.Stdin, os.Stdout, session)
}

func runLoop(in *os.File, out *os.File, session *Session) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "uci":
			fmt.Fprintln(out, "id name zugzwang")
			fmt.Fprintln(out, "uciok")
		case "isready":
			fmt.Fprintln(out, "readyok")
		case "ucinewgame":
			*session = *NewSession(session.config())
		case "position":
			if err := handlePosition(session, fields[1:]); err != nil {
				log.Error().Err(err).Msg("position command failed")
			}
		case "go":
			handleGo(session, out, fields[1:])
		case "stop":
			if err := session.Stop(); err != nil {
				log.Error().Err(err).Msg("stop failed")
			}
		case "quit":
			return
		default:
			log.Warn().Str("command", fields[0]).Msg("unrecognized command")
		}
	}
}

func (s *Session) config() sessionConfig {
	return sessionConfig{
		aspirationInitDelta: int(s.coor.AspirationInitDelta),
		safetyFactor:        s.coor.SafetyFactor,
	}
}

func handlePosition(session *Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("zugzwang: position requires startpos or fen")
	}

	startpos := args[0] == "startpos"
	fen := ""
	rest := args[1:]
	if !startpos {
		if args[0] != "fen" {
			return fmt.Errorf("zugzwang: expected startpos or fen, got %q", args[0])
		}
		// FEN is 6 space-separated fields, optionally followed by "moves ...".
		movesIdx := len(args)
		for i, a := range args[1:] {
			if a == "moves" {
				movesIdx = i + 1
				break
			}
		}
		fen = strings.Join(args[1:movesIdx], " ")
		rest = args[movesIdx:]
	}

	var uciMoves []string
	if len(rest) > 0 && rest[0] == "moves" {
		uciMoves = rest[1:]
	}

	return session.SetPosition(startpos, fen, uciMoves)
}

func handleGo(session *Session, out *os.File, args []string) {
	params := search.GoParameters{Depth: chessboard.NumSquares} // generous default depth cap
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			i++
			params.Depth = atoiOr(args, i, params.Depth)
		case "movetime":
			i++
			params.MoveTimeMs = atoiOr(args, i, 0)
		case "wtime":
			i++
			params.Time[chessboard.White] = atoiOr(args, i, 0)
		case "btime":
			i++
			params.Time[chessboard.Black] = atoiOr(args, i, 0)
		case "winc":
			i++
			params.Inc[chessboard.White] = atoiOr(args, i, 0)
		case "binc":
			i++
			params.Inc[chessboard.Black] = atoiOr(args, i, 0)
		case "movestogo":
			i++
			params.MovesToGo = atoiOr(args, i, 0)
		}
	}

	err := session.Go(params, func(ev search.Event) {
		printEvent(out, ev)
	})
	if err != nil {
		log.Error().Err(err).Msg("go failed")
		return
	}
	if err := session.Wait(); err != nil {
		log.Error().Err(err).Msg("search ended with error")
	}
}

func atoiOr(args []string, i int, fallback int) int {
	if i < 0 || i >= len(args) {
		return fallback
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return fallback
	}
	return v
}

func printEvent(out *os.File, ev search.Event) {
	if ev.Debug != "" {
		fmt.Fprintf(out, "info string %s\n", ev.Debug)
		return
	}

	switch ev.Type {
	case search.EventInfo:
		fmt.Fprintf(out, "info depth %d score %s time %d nodes %d nps %d pv%s\n",
			ev.Depth, formatScore(ev.Score), ev.Stats.TimeMs, ev.Stats.Nodes, ev.Stats.NPS, formatPV(ev.PV))
	case search.EventBest:
		if len(ev.PV) == 0 {
			fmt.Fprintln(out, "bestmove 0000")
			return
		}
		fmt.Fprintf(out, "bestmove %s\n", ev.PV[0].String())
	}
}

func formatPV(pv []chessboard.Move) string {
	var sb strings.Builder
	for _, m := range pv {
		sb.WriteByte(' ')
		sb.WriteString(m.String())
	}
	return sb.String()
}

// formatScore renders a mate score as "mate N" (full moves to mate, i.e.
// plies rounded up to moves, signed),
// matching the distance-to-mate encoding EvaluateLeaf produces, and
// anything else as plain centipawns.
func formatScore(s search.Score) string {
	const mateThreshold = search.Inf - 1000
	if s > mateThreshold {
		return fmt.Sprintf("mate %d", (search.Inf-s+1)/2)
	}
	if s < -mateThreshold {
		return fmt.Sprintf("mate %d", -(search.Inf+s+1)/2)
	}
	return fmt.Sprintf("cp %d", s)
}
