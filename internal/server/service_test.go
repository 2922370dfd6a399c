package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elemental-arena/server/internal/game"
	"github.com/elemental-arena/server/internal/randutil"
)

func TestCreateRoomSequentialIDs(t *testing.T) {
	t.Parallel()
	svc := NewGameService(testLogger(), randutil.New(1))

	id1, err := svc.CreateRoom(2)
	require.NoError(t, err)
	id2, err := svc.CreateRoom(2)
	require.NoError(t, err)

	assert.Equal(t, "room_1", id1)
	assert.Equal(t, "room_2", id2)
	assert.Equal(t, 2, svc.RoomCount())
}

func TestCreateRoomMinimumSeats(t *testing.T) {
	t.Parallel()
	svc := NewGameService(testLogger(), randutil.New(1))

	id, err := svc.CreateRoom(0)
	require.NoError(t, err)

	snap, err := svc.RoomState(id, "")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.MaxPlayers)
}

func TestRoomNotFound(t *testing.T) {
	t.Parallel()
	svc := NewGameService(testLogger(), randutil.New(1))

	assert.ErrorIs(t, svc.JoinRoom("room_99", "p1", "Alice"), ErrRoomNotFound)
	assert.ErrorIs(t, svc.LeaveRoom("room_99", "p1"), ErrRoomNotFound)
	assert.ErrorIs(t, svc.StartGame("room_99"), ErrRoomNotFound)
	assert.ErrorIs(t, svc.PlayCard("room_99", "p1", 0), ErrRoomNotFound)
	assert.ErrorIs(t, svc.RemoveRoom("room_99"), ErrRoomNotFound)
	_, err := svc.RoomState("room_99", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinAndStartDealsHands(t *testing.T) {
	t.Parallel()
	svc := NewGameService(testLogger(), randutil.New(42))

	roomID, err := svc.CreateRoom(2)
	require.NoError(t, err)
	require.NoError(t, svc.JoinRoom(roomID, "p1", "Alice"))
	require.NoError(t, svc.StartGame(roomID))

	snap, err := svc.RoomState(roomID, "p1")
	require.NoError(t, err)
	assert.True(t, snap.Started)
	require.Len(t, snap.Players, 2)
	assert.Len(t, snap.Players[0].Hand, 5)
	assert.Equal(t, 5, snap.Players[1].HandSize)
	assert.Empty(t, snap.Players[1].Hand, "opponent hand contents must stay hidden")
	assert.Equal(t, "p1", snap.CurrentTurn)
}

func TestPlayCardResolvesAgainstComputer(t *testing.T) {
	t.Parallel()
	svc := NewGameService(testLogger(), randutil.New(7))

	roomID, err := svc.CreateRoom(2)
	require.NoError(t, err)
	require.NoError(t, svc.JoinRoom(roomID, "p1", "Alice"))
	require.NoError(t, svc.StartGame(roomID))

	require.NoError(t, svc.PlayCard(roomID, "p1", 0))

	snap, err := svc.RoomState(roomID, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Rounds, "computer reply should resolve the round inline")
	assert.Less(t, len(snap.Players[0].Hand), 5)
}

func TestAvailableRoomsExcludesStarted(t *testing.T) {
	t.Parallel()
	svc := NewGameService(testLogger(), randutil.New(3))

	open, err := svc.CreateRoom(2)
	require.NoError(t, err)
	started, err := svc.CreateRoom(2)
	require.NoError(t, err)
	require.NoError(t, svc.JoinRoom(started, "p1", "Alice"))
	require.NoError(t, svc.StartGame(started))

	rooms := svc.AvailableRooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, open, rooms[0].ID)
	assert.Equal(t, 0, rooms[0].PlayerCount)
	assert.Equal(t, 2, rooms[0].MaxPlayers)
}

func TestRemoveRoom(t *testing.T) {
	t.Parallel()
	svc := NewGameService(testLogger(), randutil.New(3))

	roomID, err := svc.CreateRoom(2)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveRoom(roomID))
	assert.Equal(t, 0, svc.RoomCount())
	assert.ErrorIs(t, svc.RemoveRoom(roomID), ErrRoomNotFound)
}

func TestServiceRulesOption(t *testing.T) {
	t.Parallel()
	rules := game.Rules{Rounds: 3, CardsPerDeal: 4}
	svc := NewGameService(testLogger(), randutil.New(5), WithRules(rules))

	roomID, err := svc.CreateRoom(2)
	require.NoError(t, err)
	require.NoError(t, svc.JoinRoom(roomID, "p1", "Alice"))
	require.NoError(t, svc.StartGame(roomID))

	snap, err := svc.RoomState(roomID, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.RoundLimit)
	assert.Len(t, snap.Players[0].Hand, 4)
}

func TestReapFinishedRooms(t *testing.T) {
	t.Parallel()
	mockClock := quartz.NewMock(t)
	svc := NewGameService(testLogger(), randutil.New(9),
		WithClock(mockClock),
		WithReapGrace(time.Minute))

	finished, err := svc.CreateRoom(2)
	require.NoError(t, err)
	require.NoError(t, svc.JoinRoom(finished, "p1", "Alice"))
	require.NoError(t, svc.StartGame(finished))
	// Leaving a started game forfeits it, which marks the room finished
	require.NoError(t, svc.LeaveRoom(finished, "p1"))

	idle, err := svc.CreateRoom(2)
	require.NoError(t, err)

	// First sweep only timestamps the finished room
	svc.reap()
	assert.Equal(t, 2, svc.RoomCount())

	// Within the grace window the room survives
	mockClock.Advance(30 * time.Second)
	svc.reap()
	assert.Equal(t, 2, svc.RoomCount())

	// Past the grace window it goes; the idle room is untouched
	mockClock.Advance(31 * time.Second)
	svc.reap()
	assert.Equal(t, 1, svc.RoomCount())
	_, err = svc.RoomState(finished, "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = svc.RoomState(idle, "")
	assert.NoError(t, err)
}

func TestRunReaperStopsOnCancel(t *testing.T) {
	t.Parallel()
	mockClock := quartz.NewMock(t)
	svc := NewGameService(testLogger(), randutil.New(11), WithClock(mockClock))

	trap := mockClock.Trap().TickerFunc("reaper")
	defer trap.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.RunReaper(ctx, 30*time.Second)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	call := trap.MustWait(waitCtx)
	call.MustRelease(waitCtx)

	mockClock.Advance(30 * time.Second).MustWait(waitCtx)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation should not surface as an error")
	case <-time.After(5 * time.Second):
		t.Fatal("RunReaper did not stop after cancel")
	}
}
