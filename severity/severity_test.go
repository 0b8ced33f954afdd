package severity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	slogkit "github.com/italypaleale/faultkit/slog"
)

func TestClassify(t *testing.T) {
	t.Run("mapped codes", func(t *testing.T) {
		tests := []struct {
			code Code
			want slogkit.Level
		}{
			{E_ERROR, slogkit.LevelError},
			{E_USER_ERROR, slogkit.LevelError},
			{E_NOTICE, slogkit.LevelNotice},
			{E_USER_NOTICE, slogkit.LevelNotice},
			{E_WARNING, slogkit.LevelWarning},
			{E_USER_WARNING, slogkit.LevelWarning},
			{E_DEPRECATED, slogkit.LevelInfo},
			{E_STRICT, slogkit.LevelAlert},
		}

		for _, tt := range tests {
			t.Run(tt.code.String(), func(t *testing.T) {
				assert.Equal(t, tt.want, Classify(tt.code))
			})
		}
	})

	t.Run("everything else is critical", func(t *testing.T) {
		codes := []Code{
			0,
			E_PARSE,
			E_CORE_ERROR,
			E_CORE_WARNING,
			E_COMPILE_ERROR,
			E_COMPILE_WARNING,
			E_RECOVERABLE_ERROR,
			E_USER_DEPRECATED,
			E_ALL,
			E_WARNING | E_NOTICE,
			E_ERROR | E_USER_ERROR,
			1 << 20,
			math.MaxUint32,
		}
		for _, c := range codes {
			assert.Equal(t, slogkit.LevelCritical, Classify(c), "code %d", uint32(c))
		}
	})
}

func TestDescribe(t *testing.T) {
	t.Run("single flags", func(t *testing.T) {
		assert.Equal(t, []string{"E_WARNING"}, Describe(E_WARNING))
		assert.Equal(t, []string{"E_USER_DEPRECATED"}, Describe(E_USER_DEPRECATED))
	})

	t.Run("zero describes to nothing", func(t *testing.T) {
		assert.Empty(t, Describe(0))
	})

	t.Run("combined single-bit flags are reported in table order", func(t *testing.T) {
		assert.Equal(t, []string{"E_WARNING", "E_NOTICE"}, Describe(E_NOTICE|E_WARNING))
	})

	t.Run("composite entry requires every bit", func(t *testing.T) {
		// Almost every flag is set, but E_ALL is not listed since one of its bits is missing
		got := Describe(E_ALL &^ E_STRICT)
		assert.Len(t, got, 14)
		assert.NotContains(t, got, "E_ALL")
		assert.NotContains(t, got, "E_STRICT")

		got = Describe(E_ALL)
		assert.Len(t, got, 16)
		assert.Equal(t, "E_ALL", got[len(got)-1])
	})

	t.Run("unknown bits are ignored", func(t *testing.T) {
		assert.Empty(t, Describe(1<<20))
		assert.Equal(t, []string{"E_ERROR"}, Describe(1<<20|E_ERROR))
	})

	t.Run("total over the full range", func(t *testing.T) {
		assert.NotPanics(t, func() {
			got := Describe(math.MaxUint32)
			assert.Len(t, got, len(Flags))
		})
	})
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "E_WARNING", E_WARNING.String())
	assert.Equal(t, "E_ERROR|E_NOTICE", (E_ERROR | E_NOTICE).String())
	assert.Equal(t, "0", Code(0).String())
	assert.Equal(t, "1048576", Code(1<<20).String())
}

func TestParseMask(t *testing.T) {
	tests := []struct {
		name    string
		exprs   []string
		want    Mask
		wantErr string
	}{
		{name: "empty defaults to E_ALL", exprs: nil, want: E_ALL},
		{name: "single flag", exprs: []string{"E_WARNING"}, want: E_WARNING},
		{name: "case insensitive", exprs: []string{"e_notice", " E_USER_NOTICE "}, want: E_NOTICE | E_USER_NOTICE},
		{name: "remove flags", exprs: []string{"E_ALL", "~E_DEPRECATED", "~ E_STRICT"}, want: E_ALL &^ E_DEPRECATED &^ E_STRICT},
		{name: "numbers", exprs: []string{"8", "0x2"}, want: E_NOTICE | E_WARNING},
		{name: "invalid name", exprs: []string{"E_NOPE"}, wantErr: "invalid error code 'E_NOPE'"},
		{name: "empty expression", exprs: []string{"~"}, wantErr: "empty error code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMask(tt.exprs)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaskAllows(t *testing.T) {
	mask := E_ALL &^ E_NOTICE
	assert.True(t, mask.Allows(E_WARNING))
	assert.False(t, mask.Allows(E_NOTICE))
	assert.True(t, mask.Allows(E_NOTICE|E_WARNING))
	assert.False(t, Mask(0).Allows(E_ERROR))
}
