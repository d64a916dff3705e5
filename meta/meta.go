// meta/meta.go
package meta

import "time"

// WIN_LENGTH is the number of collinear marks that wins the game.
const WIN_LENGTH = 5

// MAX_MOVES caps a self-play game; reaching it is a draw.
const MAX_MOVES = 200

// SEARCH_DEPTH is the default minimax depth (own move + opponent reply).
const SEARCH_DEPTH = 2

// TOP_N is the default number of ranked moves expanded per node.
const TOP_N = 10

// TIMED_DEPTH is the default ply limit of the time-boxed search.
const TIMED_DEPTH = 3

// TIME_BUDGET is the default wall-clock budget of the time-boxed search.
const TIME_BUDGET = 100 * time.Millisecond

// WIN_SCORE dominates every positional score.
const WIN_SCORE = 1000000
