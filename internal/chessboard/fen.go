package chessboard

import (
	"fmt"
	"strconv"
	"strings"
)

var pieceFromFENChar = map[byte]Piece{
	'P': MakePiece(White, Pawn), 'N': MakePiece(White, Knight), 'B': MakePiece(White, Bishop),
	'R': MakePiece(White, Rook), 'Q': MakePiece(White, Queen), 'K': MakePiece(White, King),
	'p': MakePiece(Black, Pawn), 'n': MakePiece(Black, Knight), 'b': MakePiece(Black, Bishop),
	'r': MakePiece(Black, Rook), 'q': MakePiece(Black, Queen), 'k': MakePiece(Black, King),
}

var fenCharFromPiece = map[Piece]byte{}

func init() {
	for c, p := range pieceFromFENChar {
		fenCharFromPiece[p] = c
	}
}

// FromFEN parses Forsyth-Edwards Notation into a Position.
func FromFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("chessboard: malformed FEN %q: need at least 4 fields", fen)
	}

	pos := &Position{EPSquare: -1}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("chessboard: malformed FEN board %q", fields[0])
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, c := range []byte(rankStr) {
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			p, ok := pieceFromFENChar[c]
			if !ok {
				return nil, fmt.Errorf("chessboard: unknown piece char %q in FEN", c)
			}
			if file > 7 {
				return nil, fmt.Errorf("chessboard: rank %q overflows the board", rankStr)
			}
			pos.Board.put(SquareOf(file, rank), p)
			file++
		}
	}

	switch fields[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("chessboard: bad side-to-move field %q", fields[1])
	}

	if fields[2] != "-" {
		for _, c := range []byte(fields[2]) {
			switch c {
			case 'K':
				pos.CastleRights |= WhiteOO
			case 'Q':
				pos.CastleRights |= WhiteOOO
			case 'k':
				pos.CastleRights |= BlackOO
			case 'q':
				pos.CastleRights |= BlackOOO
			}
		}
	}

	if fields[3] != "-" {
		sq, err := parseSquareName(fields[3])
		if err != nil {
			return nil, err
		}
		pos.EPSquare = int8(sq)
	}

	if len(fields) > 4 {
		if hc, err := strconv.Atoi(fields[4]); err == nil {
			pos.HalfmoveClock = hc
		}
	}
	fullmove := 1
	if len(fields) > 5 {
		if fm, err := strconv.Atoi(fields[5]); err == nil {
			fullmove = fm
		}
	}
	pos.GamePly = 2*(fullmove-1) + int(pos.SideToMove)

	pos.Hash = pos.CalculateHash()
	return pos, nil
}

func parseSquareName(s string) (int, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("chessboard: bad square %q", s)
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if !onBoard(file, rank) {
		return 0, fmt.Errorf("chessboard: square %q out of range", s)
	}
	return SquareOf(file, rank), nil
}

// Encode renders the position back to FEN.
func (pos *Position) Encode() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			p := pos.Board.Squares[SquareOf(f, r)]
			if p.IsNone() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(fenCharFromPiece[p])
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if pos.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	if pos.CastleRights == 0 {
		sb.WriteByte('-')
	} else {
		if pos.CastleRights&WhiteOO != 0 {
			sb.WriteByte('K')
		}
		if pos.CastleRights&WhiteOOO != 0 {
			sb.WriteByte('Q')
		}
		if pos.CastleRights&BlackOO != 0 {
			sb.WriteByte('k')
		}
		if pos.CastleRights&BlackOOO != 0 {
			sb.WriteByte('q')
		}
	}

	sb.WriteByte(' ')
	if pos.EPSquare < 0 {
		sb.WriteByte('-')
	} else {
		sb.WriteString(squareName(int(pos.EPSquare)))
	}

	fullmove := pos.GamePly/2 + 1
	fmt.Fprintf(&sb, " %d %d", pos.HalfmoveClock, fullmove)
	return sb.String()
}
