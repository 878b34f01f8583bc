package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSplitsTriggerAndArguments(t *testing.T) {
	trigger, args := Parse("  !quote   add bob  hello there ")
	assert.Equal(t, "!quote", trigger)
	assert.Equal(t, []string{"add", "bob", "hello", "there"}, args.Args)
	assert.Equal(t, "  !quote   add bob  hello there ", args.Line)

	trigger, args = Parse("   ")
	assert.Empty(t, trigger)
	assert.Zero(t, args.Len())
}

func TestGetOutOfRangeReturnsEmpty(t *testing.T) {
	_, args := Parse("!cmd a b")
	assert.Equal(t, "a", args.Get(0))
	assert.Equal(t, "b", args.Get(1))
	for _, i := range []int{2, 3, 100, -1} {
		assert.Equal(t, "", args.Get(i), "index %d", i)
	}
}

func TestJoinAndSliceUseHalfOpenRanges(t *testing.T) {
	_, args := Parse("!cmd a b c d")

	assert.Equal(t, "b c", args.Join(1, 3, " "))
	assert.Equal(t, "a-b-c-d", args.Join(0, args.Len(), "-"))
	assert.Equal(t, "", args.Join(2, 2, " "))
	assert.Equal(t, "", args.Join(3, 1, " "))
	assert.Equal(t, "d", args.Join(3, 10, " "))

	assert.Equal(t, []string{"b", "c"}, args.Slice(1, 3))
	assert.Empty(t, args.Slice(4, 4))

	s := args.Slice(0, 1)
	s[0] = "changed"
	assert.Equal(t, "a", args.Get(0))
}

func TestTryParsersNeverFail(t *testing.T) {
	_, args := Parse("!cmd 42 -3 1.5 abc 99999999999999999999999")

	v, ok := args.TryInt(0)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	v, ok = args.TryInt(1)
	assert.True(t, ok)
	assert.Equal(t, -3, v)

	_, ok = args.TryInt(2)
	assert.False(t, ok)
	_, ok = args.TryInt(3)
	assert.False(t, ok)
	_, ok = args.TryInt(4)
	assert.False(t, ok)
	_, ok = args.TryInt(10)
	assert.False(t, ok)
	_, ok = args.TryInt(-1)
	assert.False(t, ok)

	f, ok := args.TryFloat(2)
	assert.True(t, ok)
	assert.InDelta(t, 1.5, f, 1e-9)
	_, ok = args.TryFloat(3)
	assert.False(t, ok)
	_, ok = args.TryFloat(7)
	assert.False(t, ok)
}

func TestIntPanicsWithParseError(t *testing.T) {
	_, args := Parse("!cmd 7 x")
	assert.Equal(t, 7, args.Int(0))
	assert.InDelta(t, 7.0, args.Float(0), 1e-9)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		pe, ok := r.(*ParseError)
		require.True(t, ok)
		assert.Equal(t, 1, pe.Index)
		assert.Equal(t, "x", pe.Token)
	}()
	args.Int(1)
}

func TestMatchesFullLineCaseInsensitive(t *testing.T) {
	_, args := Parse("!Command ADD foo bar")
	assert.True(t, args.Matches(argsPrefix+`add\s+\S+\s+\S`))
	assert.True(t, args.Matches(`^!command`))
	assert.False(t, args.Matches(argsPrefix+`edit`))
}
