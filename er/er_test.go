package er_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/stretchr/testify/require"
)

var (
	testType = er.NewErrorType("er_test")
	errOne   = testType.CodeWithDetail("ErrOne", "the first thing failed")
	errTwo   = testType.Code("ErrTwo")
)

func TestNilSafety(t *testing.T) {
	require.Nil(t, er.E(nil))
	require.NoError(t, er.Native(nil))
	require.Nil(t, er.Cause(nil))
	require.True(t, er.Equals(nil, nil))
	require.False(t, er.Equals(nil, er.New("x")))
}

func TestNativeRoundTrip(t *testing.T) {
	err := er.New("boom")
	back := er.E(er.Native(err))
	require.Same(t, err, back)
	require.Equal(t, "boom", er.Native(err).Error())
	require.Contains(t, err.String(), "er_test.go")
}

func TestStackStartsAtCaller(t *testing.T) {
	_, e1 := er.E1(0, errors.New("e1"))
	for _, err := range []er.R{
		er.New("new"),
		er.Errorf("errorf %d", 1),
		er.E(errors.New("native")),
		e1,
		errOne.New("info", nil),
		errTwo.Default(),
	} {
		stack := err.Stack()
		first := strings.SplitN(stack, "\n", 2)[0]
		require.Contains(t, first, "er_test.go", err.Message())
		require.NotContains(t, first, "/er/er.go", err.Message())
		require.NotContains(t, first, "errortype.go", err.Message())
	}
}

func TestCodes(t *testing.T) {
	err := errOne.New("disk is full", nil)
	require.True(t, errOne.Is(err))
	require.False(t, errTwo.Is(err))
	require.True(t, testType.Is(err))
	require.Equal(t, "ErrOne: the first thing failed: disk is full", err.Message())
	require.Equal(t, "er_test.ErrOne", errOne.String())
	require.Equal(t, "disk is full", er.Info(err))

	wrapped := errTwo.New("", err)
	require.True(t, errOne.Is(wrapped))
	require.Same(t, errTwo, er.CodeOf(wrapped))
	require.Same(t, err, er.Cause(wrapped))
	require.Equal(t, "ErrTwo: ErrOne: the first thing failed: disk is full", wrapped.Message())
}

func TestAddMessage(t *testing.T) {
	err := er.E(errors.New("connection refused"))
	err.AddMessage("dialing node")
	require.Equal(t, "dialing node: connection refused", err.Message())
	require.Nil(t, er.CodeOf(err))
}

func TestUnwrapChain(t *testing.T) {
	inner := errOne.Default()
	outer := errTwo.New("ctx", inner)
	require.ErrorIs(t, er.Native(outer), errors.Unwrap(er.Native(outer)))
	_, e := er.E1(0, errors.New("x"))
	require.Equal(t, "x", e.Message())
}
