package chessboard

// GenerateLegalMoves returns every legal move available to the side to
// move. Pseudo-legal moves are generated first and then filtered by
// simulating each one and checking the moving side's own king is safe,
// the standard mailbox-engine approach (castling legality is instead
// checked at generation time, since "king passes through an attacked
// square" can't be expressed as a post-hoc own-king check).
func (pos *Position) GenerateLegalMoves() []Move {
	pseudo := pos.generatePseudoLegalMoves()
	legal := make([]Move, 0, len(pseudo))
	us := pos.SideToMove
	for _, m := range pseudo {
		pos.MakeMove(m)
		king := pos.Board.kingSquare(us)
		safe := king < 0 || !pos.Board.attacksSquare(king, pos.SideToMove)
		pos.UnmakeMove(m)
		if safe {
			legal = append(legal, m)
		}
	}
	return legal
}

func (pos *Position) generatePseudoLegalMoves() []Move {
	var moves []Move
	us := pos.SideToMove
	for sq := 0; sq < NumSquares; sq++ {
		p := pos.Board.Squares[sq]
		if p.IsNone() || p.Side() != us {
			continue
		}
		switch p.Type() {
		case Pawn:
			pos.genPawnMoves(sq, us, &moves)
		case Knight:
			pos.genStepMoves(sq, us, knightOffsets[:], &moves)
		case King:
			pos.genStepMoves(sq, us, kingOffsets[:], &moves)
			pos.genCastles(us, &moves)
		case Bishop:
			pos.genSlideMoves(sq, us, bishopDirs[:], &moves)
		case Rook:
			pos.genSlideMoves(sq, us, rookDirs[:], &moves)
		case Queen:
			pos.genSlideMoves(sq, us, bishopDirs[:], &moves)
			pos.genSlideMoves(sq, us, rookDirs[:], &moves)
		}
	}
	return moves
}

func (pos *Position) genStepMoves(sq int, us Side, offsets [][2]int, moves *[]Move) {
	file, rank := FileOf(sq), RankOf(sq)
	for _, o := range offsets {
		f, r := file+o[0], rank+o[1]
		if !onBoard(f, r) {
			continue
		}
		to := SquareOf(f, r)
		target := pos.Board.Squares[to]
		if target.IsNone() || target.Side() != us {
			*moves = append(*moves, NewMove(sq, to, NoPieceType, FlagNone))
		}
	}
}

func (pos *Position) genSlideMoves(sq int, us Side, dirs [][2]int, moves *[]Move) {
	file, rank := FileOf(sq), RankOf(sq)
	for _, d := range dirs {
		f, r := file+d[0], rank+d[1]
		for onBoard(f, r) {
			to := SquareOf(f, r)
			target := pos.Board.Squares[to]
			if target.IsNone() {
				*moves = append(*moves, NewMove(sq, to, NoPieceType, FlagNone))
			} else {
				if target.Side() != us {
					*moves = append(*moves, NewMove(sq, to, NoPieceType, FlagNone))
				}
				break
			}
			f += d[0]
			r += d[1]
		}
	}
}

var promotionPieces = [4]PieceType{Queen, Rook, Bishop, Knight}

func (pos *Position) genPawnMoves(sq int, us Side, moves *[]Move) {
	file, rank := FileOf(sq), RankOf(sq)
	dir := 1
	startRank, promoRank := 1, 7
	if us == Black {
		dir = -1
		startRank, promoRank = 6, 0
	}

	addPawnMove := func(to int, flag MoveFlag) {
		if RankOf(to) == promoRank {
			for _, pt := range promotionPieces {
				*moves = append(*moves, NewMove(sq, to, pt, flag))
			}
		} else {
			*moves = append(*moves, NewMove(sq, to, NoPieceType, flag))
		}
	}

	oneRank := rank + dir
	if onBoard(file, oneRank) {
		oneSq := SquareOf(file, oneRank)
		if pos.Board.Squares[oneSq].IsNone() {
			addPawnMove(oneSq, FlagNone)
			if rank == startRank {
				twoSq := SquareOf(file, rank+2*dir)
				if pos.Board.Squares[twoSq].IsNone() {
					addPawnMove(twoSq, FlagDoublePush)
				}
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		f := file + df
		if !onBoard(f, oneRank) {
			continue
		}
		to := SquareOf(f, oneRank)
		target := pos.Board.Squares[to]
		if !target.IsNone() && target.Side() != us {
			addPawnMove(to, FlagNone)
		} else if target.IsNone() && pos.EPSquare >= 0 && int(pos.EPSquare) == to {
			*moves = append(*moves, NewMove(sq, to, NoPieceType, FlagEnPassant))
		}
	}
}

func (pos *Position) genCastles(us Side, moves *[]Move) {
	opp := us.Other()
	rank := 0
	kingsideRight, queensideRight := WhiteOO, WhiteOOO
	if us == Black {
		rank = 7
		kingsideRight, queensideRight = BlackOO, BlackOOO
	}
	kingSq := SquareOf(4, rank)
	if pos.Board.Squares[kingSq].Type() != King || pos.Board.attacksSquare(kingSq, opp) {
		return
	}

	if pos.CastleRights&kingsideRight != 0 {
		fSq, gSq := SquareOf(5, rank), SquareOf(6, rank)
		if pos.Board.Squares[fSq].IsNone() && pos.Board.Squares[gSq].IsNone() &&
			!pos.Board.attacksSquare(fSq, opp) && !pos.Board.attacksSquare(gSq, opp) {
			*moves = append(*moves, NewMove(kingSq, gSq, NoPieceType, FlagCastleKingside))
		}
	}
	if pos.CastleRights&queensideRight != 0 {
		dSq, cSq, bSq := SquareOf(3, rank), SquareOf(2, rank), SquareOf(1, rank)
		if pos.Board.Squares[dSq].IsNone() && pos.Board.Squares[cSq].IsNone() && pos.Board.Squares[bSq].IsNone() &&
			!pos.Board.attacksSquare(dSq, opp) && !pos.Board.attacksSquare(cSq, opp) {
			*moves = append(*moves, NewMove(kingSq, cSq, NoPieceType, FlagCastleQueenside))
		}
	}
}
