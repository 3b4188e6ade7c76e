package gridgame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancarodev/ancaro-server/internal/apperror"
	"github.com/ancarodev/ancaro-server/internal/entity"
)

func newTestRules(t *testing.T) *Rules {
	t.Helper()

	rules, err := NewRules(3, 3, 3)
	require.NoError(t, err)

	return rules
}

func activeRoom(rules *Rules) *entity.Room {
	room := entity.NewRoom("r1", rules.Cells())
	room.Players["conn-a"] = entity.PlayerX
	room.Players["conn-b"] = entity.PlayerO
	room.Status = entity.StatusActive

	return room
}

func TestNewRules(t *testing.T) {
	t.Run("Builds rules for the default client board", func(t *testing.T) {
		// Given/When: a 20x20 board with five in a row to win
		rules, err := NewRules(20, 20, 5)

		// Then: the board matches the 400-cell client default
		require.NoError(t, err)
		assert.Equal(t, 400, rules.Cells())
	})

	t.Run("Error on non-positive board dimensions", func(t *testing.T) {
		_, err := NewRules(0, 3, 3)
		assert.ErrorIs(t, err, ErrInvalidRules)
	})

	t.Run("Error when the winning run does not fit the board", func(t *testing.T) {
		_, err := NewRules(3, 3, 4)
		assert.ErrorIs(t, err, ErrInvalidRules)
	})

	t.Run("Error on a one-cell winning run", func(t *testing.T) {
		_, err := NewRules(3, 3, 1)
		assert.ErrorIs(t, err, ErrInvalidRules)
	})
}

func TestRules_DetectOutcome(t *testing.T) {
	rules := newTestRules(t)

	t.Run("In progress on a part-filled board", func(t *testing.T) {
		// Given: a board with no completed line
		board := entity.Board{
			entity.PlayerX, entity.PlayerO, "",
			"", entity.PlayerX, "",
			"", "", entity.PlayerO,
		}

		// When: detecting the outcome
		winner, line := rules.DetectOutcome(board)

		// Then: no winner and no line
		assert.Empty(t, winner)
		assert.Nil(t, line)
	})

	t.Run("Row win reports the winning indexes", func(t *testing.T) {
		// Given: X filled the top row
		board := entity.Board{
			entity.PlayerX, entity.PlayerX, entity.PlayerX,
			entity.PlayerO, entity.PlayerO, "",
			"", "", "",
		}

		// When: detecting the outcome
		winner, line := rules.DetectOutcome(board)

		// Then: X wins with the top row
		assert.Equal(t, entity.PlayerX, winner)
		assert.Equal(t, []int{0, 1, 2}, line)
	})

	t.Run("Column win reports the winning indexes", func(t *testing.T) {
		// Given: O filled the middle column
		board := entity.Board{
			entity.PlayerX, entity.PlayerO, "",
			entity.PlayerX, entity.PlayerO, "",
			"", entity.PlayerO, entity.PlayerX,
		}

		// When: detecting the outcome
		winner, line := rules.DetectOutcome(board)

		// Then: O wins with the middle column
		assert.Equal(t, entity.PlayerO, winner)
		assert.Equal(t, []int{1, 4, 7}, line)
	})

	t.Run("Down-right diagonal win", func(t *testing.T) {
		// Given: X holds the main diagonal
		board := entity.Board{
			entity.PlayerX, entity.PlayerO, "",
			entity.PlayerO, entity.PlayerX, "",
			"", "", entity.PlayerX,
		}

		winner, line := rules.DetectOutcome(board)

		assert.Equal(t, entity.PlayerX, winner)
		assert.Equal(t, []int{0, 4, 8}, line)
	})

	t.Run("Down-left diagonal win", func(t *testing.T) {
		// Given: O holds the anti-diagonal
		board := entity.Board{
			entity.PlayerX, entity.PlayerX, entity.PlayerO,
			entity.PlayerX, entity.PlayerO, "",
			entity.PlayerO, "", "",
		}

		winner, line := rules.DetectOutcome(board)

		assert.Equal(t, entity.PlayerO, winner)
		assert.Equal(t, []int{2, 4, 6}, line)
	})

	t.Run("Draw on a full board with no line", func(t *testing.T) {
		// Given: a completely filled board without three in a row
		board := entity.Board{
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
			entity.PlayerO, entity.PlayerX, entity.PlayerO,
			entity.PlayerO, entity.PlayerX, entity.PlayerO,
		}

		winner, line := rules.DetectOutcome(board)

		assert.Equal(t, entity.WinnerDraw, winner)
		assert.Nil(t, line)
	})

	t.Run("Lowest pattern wins the tie-break", func(t *testing.T) {
		// Given: X holds both the top row and the left column
		board := entity.Board{
			entity.PlayerX, entity.PlayerX, entity.PlayerX,
			entity.PlayerX, entity.PlayerO, entity.PlayerO,
			entity.PlayerX, "", "",
		}

		// When: detecting the outcome twice
		winner, line := rules.DetectOutcome(board)
		winnerAgain, lineAgain := rules.DetectOutcome(board)

		// Then: rows are scanned before columns, deterministically
		assert.Equal(t, entity.PlayerX, winner)
		assert.Equal(t, []int{0, 1, 2}, line)
		assert.Equal(t, winnerAgain, winner)
		assert.Equal(t, lineAgain, line)
	})

	t.Run("Five in a row on the big board", func(t *testing.T) {
		// Given: 20x20 rules and an X diagonal of length five
		rules20, err := NewRules(20, 20, 5)
		require.NoError(t, err)

		board := entity.NewBoard(rules20.Cells())
		want := make([]int, 0, 5)
		for k := 0; k < 5; k++ {
			cell := (2+k)*20 + 3 + k
			board[cell] = entity.PlayerX
			want = append(want, cell)
		}

		// When: detecting the outcome
		winner, line := rules20.DetectOutcome(board)

		// Then: X wins with exactly those five cells
		assert.Equal(t, entity.PlayerX, winner)
		assert.Equal(t, want, line)
	})
}

func TestRules_MakeTurn(t *testing.T) {
	rules := newTestRules(t)

	t.Run("Successful turn flips the turn only", func(t *testing.T) {
		// Given: an active room with X to move
		room := activeRoom(rules)

		// When: X plays cell 0
		err := rules.MakeTurn(room, entity.PlayerX, 0)

		// Then: the mark is placed, the turn flips and nothing finishes
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, room.Board[0])
		assert.Equal(t, entity.PlayerO, room.Turn)
		assert.Equal(t, entity.StatusActive, room.Status)
		assert.Empty(t, room.Winner)
	})

	t.Run("Error when the game is not active", func(t *testing.T) {
		// Given: a waiting room
		room := entity.NewRoom("r1", rules.Cells())
		room.Players["conn-a"] = entity.PlayerX

		// When: X tries to move
		err := rules.MakeTurn(room, entity.PlayerX, 0)

		// Then: the move is rejected and the board untouched
		require.ErrorIs(t, err, apperror.ErrGameNotActive)
		assert.Equal(t, entity.EmptyCell, room.Board[0])
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: an active room with X to move
		room := activeRoom(rules)

		// When: O tries to move
		err := rules.MakeTurn(room, entity.PlayerO, 1)

		// Then: an ErrNotYourTurn error is returned and state is unchanged
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, entity.EmptyCell, room.Board[1])
		assert.Equal(t, entity.PlayerX, room.Turn)
	})

	t.Run("Error on occupied cell", func(t *testing.T) {
		// Given: an active room where X took cell 0
		room := activeRoom(rules)
		require.NoError(t, rules.MakeTurn(room, entity.PlayerX, 0))

		// When: O plays the same cell
		err := rules.MakeTurn(room, entity.PlayerO, 0)

		// Then: the move is rejected and the turn stays with O
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, entity.PlayerX, room.Board[0])
		assert.Equal(t, entity.PlayerO, room.Turn)
	})

	t.Run("Error on invalid cell index", func(t *testing.T) {
		// Given: an active room
		room := activeRoom(rules)

		// When: X plays outside the board
		err := rules.MakeTurn(room, entity.PlayerX, 20)

		// Then: an ErrInvalidCell error is returned
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Winning move finishes the game", func(t *testing.T) {
		// Given: an active room two X moves into the top row
		room := activeRoom(rules)
		require.NoError(t, rules.MakeTurn(room, entity.PlayerX, 0))
		require.NoError(t, rules.MakeTurn(room, entity.PlayerO, 3))
		require.NoError(t, rules.MakeTurn(room, entity.PlayerX, 1))
		require.NoError(t, rules.MakeTurn(room, entity.PlayerO, 4))

		// When: X completes the row
		err := rules.MakeTurn(room, entity.PlayerX, 2)

		// Then: the game is finished with X as winner and the line recorded
		require.NoError(t, err)
		assert.Equal(t, entity.StatusFinished, room.Status)
		assert.Equal(t, entity.PlayerX, room.Winner)
		assert.Equal(t, []int{0, 1, 2}, room.WinningLine)
		assert.Empty(t, room.Turn)

		// When: O tries to keep playing
		err = rules.MakeTurn(room, entity.PlayerO, 5)

		// Then: the move is rejected
		assert.ErrorIs(t, err, apperror.ErrGameNotActive)
	})

	t.Run("Filling the board without a line is a draw", func(t *testing.T) {
		// Given: an active room played into a known draw
		// X O X
		// X O O  with the last X at cell 8 closing the board
		// O X X
		room := activeRoom(rules)
		moves := []struct {
			mark string
			cell int
		}{
			{entity.PlayerX, 0}, {entity.PlayerO, 1},
			{entity.PlayerX, 2}, {entity.PlayerO, 4},
			{entity.PlayerX, 3}, {entity.PlayerO, 5},
			{entity.PlayerX, 7}, {entity.PlayerO, 6},
			{entity.PlayerX, 8},
		}

		// When: playing every move
		for _, move := range moves {
			require.NoError(t, rules.MakeTurn(room, move.mark, move.cell))
		}

		// Then: the game ends in a draw with no winning line
		assert.Equal(t, entity.StatusFinished, room.Status)
		assert.Equal(t, entity.WinnerDraw, room.Winner)
		assert.Nil(t, room.WinningLine)
	})
}
