package cdconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testScope() scope {
	return scopeOf([]ConfigItem{
		{Key: "A", Values: []ConfigValue{Number(1)}},
		{Key: "B", Values: []ConfigValue{Number(2), Number(3)}},
	})
}

func TestCursorStartsAtRoot(t *testing.T) {
	c := newCursor(testScope())
	require.Equal(t, 1, c.depth())

	f, err := c.current()
	require.NoError(t, err)
	require.Equal(t, frameStruct, f.kind)
}

func TestCursorBindFieldPushesThenReplaces(t *testing.T) {
	c := newCursor(testScope())

	require.NoError(t, c.bindField(0))
	require.Equal(t, 2, c.depth())

	f, err := c.current()
	require.NoError(t, err)
	require.Equal(t, frameItem, f.kind)
	require.Equal(t, "A", f.key)

	// the second field replaces the first one's frame in place
	require.NoError(t, c.bindField(1))
	require.Equal(t, 2, c.depth())

	f, err = c.current()
	require.NoError(t, err)
	require.Equal(t, "B", f.key)
	require.Len(t, f.elems, 2)
}

func TestCursorBindElementPushesThenReplaces(t *testing.T) {
	c := newCursor(testScope())
	require.NoError(t, c.bindField(1))

	require.NoError(t, c.bindElement(0))
	require.Equal(t, 3, c.depth())

	f, err := c.current()
	require.NoError(t, err)
	require.Equal(t, frameSeq, f.kind)
	require.Equal(t, 0, f.index)

	require.NoError(t, c.bindElement(1))
	require.Equal(t, 3, c.depth())

	f, err = c.current()
	require.NoError(t, err)
	require.Equal(t, 1, f.index)
}

func TestCursorBindFieldNeedsStructParent(t *testing.T) {
	c := newCursor(testScope())
	require.NoError(t, c.bindField(0))

	// the top frame is an item now, binding another first field under it
	// must fail
	require.ErrorIs(t, c.bindField(0), ErrExpectStruct)
}

func TestCursorBindElementNeedsItemParent(t *testing.T) {
	c := newCursor(testScope())

	require.ErrorIs(t, c.bindElement(0), ErrExpectKey)
}

func TestCursorPopRestoresParent(t *testing.T) {
	c := newCursor(testScope())
	require.NoError(t, c.bindField(0))

	c.pop()
	require.Equal(t, 1, c.depth())

	f, err := c.current()
	require.NoError(t, err)
	require.Equal(t, frameStruct, f.kind)
}

func TestCursorEmptyStack(t *testing.T) {
	c := newCursor(testScope())
	c.pop()

	_, err := c.current()
	require.ErrorIs(t, err, ErrNoFrames)

	require.ErrorIs(t, c.bindField(0), ErrNoFrames)
}
