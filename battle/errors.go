package battle

import "errors"

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrGameOver    = errors.New("game is over")
	ErrUnknownUnit = errors.New("unknown unit")
	ErrNoLevel     = errors.New("no such level")
	ErrNotWon      = errors.New("level not won")
)
