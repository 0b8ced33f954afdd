package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(calls *[]string, name string, err error) Handler[string] {
	return func(_ context.Context, signal string) error {
		*calls = append(*calls, name+":"+signal)
		return err
	}
}

func TestCall(t *testing.T) {
	t.Run("returns the handler's error", func(t *testing.T) {
		errBoom := errors.New("boom")
		err := Call(t.Context(), func(context.Context, int) error { return errBoom }, 1)
		require.ErrorIs(t, err, errBoom)
	})

	t.Run("recovers panics", func(t *testing.T) {
		err := Call(t.Context(), func(context.Context, int) error { panic("oh no") }, 1)

		var panicErr *PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "oh no", panicErr.Value)
		assert.NotEmpty(t, panicErr.Stack)
		assert.Equal(t, "handler panicked: oh no", err.Error())
	})

	t.Run("panics with errors are unwrapped", func(t *testing.T) {
		errBoom := errors.New("boom")
		err := Call(t.Context(), func(context.Context, int) error { panic(errBoom) }, 1)
		require.ErrorIs(t, err, errBoom)
	})

	t.Run("nil handler", func(t *testing.T) {
		require.NoError(t, Call[int](t.Context(), nil, 1))
	})
}

func TestLink(t *testing.T) {
	t.Run("previous runs before handler", func(t *testing.T) {
		var calls []string
		h := Link(recorder(&calls, "new", nil), recorder(&calls, "old", nil))

		require.NoError(t, h(t.Context(), "x"))
		assert.Equal(t, []string{"old:x", "new:x"}, calls)
	})

	t.Run("nil previous", func(t *testing.T) {
		var calls []string
		h := Link(recorder(&calls, "new", nil), nil)

		require.NoError(t, h(t.Context(), "x"))
		assert.Equal(t, []string{"new:x"}, calls)
	})

	t.Run("failing previous does not stop handler", func(t *testing.T) {
		var calls []string
		h := Link(recorder(&calls, "new", nil), recorder(&calls, "old", errors.New("old failed")))

		require.NoError(t, h(t.Context(), "x"))
		assert.Equal(t, []string{"old:x", "new:x"}, calls)
	})

	t.Run("panicking previous does not stop handler", func(t *testing.T) {
		var calls []string
		panicking := func(context.Context, string) error {
			calls = append(calls, "old")
			panic("old panicked")
		}
		h := Link(recorder(&calls, "new", nil), panicking)

		assert.NotPanics(t, func() {
			require.NoError(t, h(t.Context(), "x"))
		})
		assert.Equal(t, []string{"old", "new:x"}, calls)
	})

	t.Run("handler's own error is returned", func(t *testing.T) {
		errNew := errors.New("new failed")
		var calls []string
		h := Link(recorder(&calls, "new", errNew), recorder(&calls, "old", nil))

		require.ErrorIs(t, h(t.Context(), "x"), errNew)
	})

	t.Run("handler's own panic is contained", func(t *testing.T) {
		var calls []string
		h := Link(func(context.Context, string) error { panic("new panicked") }, recorder(&calls, "old", nil))

		var err error
		assert.NotPanics(t, func() {
			err = h(t.Context(), "x")
		})
		var panicErr *PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, []string{"old:x"}, calls)
	})
}

func TestCompose(t *testing.T) {
	var calls []string
	h := Compose(
		recorder(&calls, "h1", nil),
		nil,
		recorder(&calls, "h2", errors.New("h2 failed")),
		func(context.Context, string) error { panic("h3") },
		recorder(&calls, "h4", nil),
	)

	require.NoError(t, h(t.Context(), "x"))
	assert.Equal(t, []string{"h1:x", "h2:x", "h4:x"}, calls)

	assert.Nil(t, Compose[string]())
}
