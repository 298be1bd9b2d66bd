package scopes

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorded builds a Funcs scope that appends enter/exit events to log and
// yields its own name.
func recorded(name string, log *[]string) Scope[string] {
	return Funcs[string]{
		OnEnter: func(ctx context.Context) (string, error) {
			*log = append(*log, name+" enter")
			return name, nil
		},
		OnExit: func(ctx context.Context, cause error) (bool, error) {
			*log = append(*log, name+" exit")
			return false, nil
		},
	}
}

func TestEnterExitMirrorsEntryOrder(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{name: "no scopes", count: 0},
		{name: "one scope", count: 1},
		{name: "three scopes", count: 3},
		{name: "five scopes", count: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log []string
			scs := make([]Scope[string], 0, tt.count)
			wantValues := make([]string, 0, tt.count)
			for i := 0; i < tt.count; i++ {
				name := fmt.Sprintf("s%d", i)
				scs = append(scs, recorded(name, &log))
				wantValues = append(wantValues, name)
			}

			st, err := Enter(context.Background(), scs)
			require.NoError(t, err)
			assert.Equal(t, wantValues, st.Values())
			assert.Equal(t, tt.count, st.Len())

			require.NoError(t, st.Close(context.Background()))
			assert.Zero(t, st.Len())

			var want []string
			for i := 0; i < tt.count; i++ {
				want = append(want, fmt.Sprintf("s%d enter", i))
			}
			for i := tt.count - 1; i >= 0; i-- {
				want = append(want, fmt.Sprintf("s%d exit", i))
			}
			assert.Equal(t, want, log)
		})
	}
}

func TestEnterFailureUnwindsEnteredScopes(t *testing.T) {
	errEnter := errors.New("entry failed")

	var log []string
	failing := Funcs[string]{
		OnEnter: func(ctx context.Context) (string, error) {
			return "", errEnter
		},
	}
	scs := []Scope[string]{recorded("s0", &log), recorded("s1", &log), failing, recorded("s3", &log)}

	st, err := Enter(context.Background(), scs)
	assert.Nil(t, st)
	assert.ErrorIs(t, err, errEnter)
	assert.Equal(t, []string{"s0 enter", "s1 enter", "s1 exit", "s0 exit"}, log)
}

func TestEnterFailureCannotBeSuppressed(t *testing.T) {
	errEnter := errors.New("entry failed")

	swallowing := Funcs[string]{
		OnExit: func(ctx context.Context, cause error) (bool, error) {
			return true, nil
		},
	}
	failing := Funcs[string]{
		OnEnter: func(ctx context.Context) (string, error) {
			return "", errEnter
		},
	}

	_, err := Enter(context.Background(), []Scope[string]{swallowing, failing})
	assert.ErrorIs(t, err, errEnter)
}

func TestEnterFailureJoinsExitFailures(t *testing.T) {
	errEnter := errors.New("entry failed")
	errExit := errors.New("exit failed")

	broken := Funcs[string]{
		OnExit: func(ctx context.Context, cause error) (bool, error) {
			assert.ErrorIs(t, cause, errEnter)
			return false, errExit
		},
	}
	failing := Funcs[string]{
		OnEnter: func(ctx context.Context) (string, error) {
			return "", errEnter
		},
	}

	_, err := Enter(context.Background(), []Scope[string]{broken, failing})
	assert.ErrorIs(t, err, errEnter)
	assert.ErrorIs(t, err, errExit)
}

func TestExitThreadsCauseOutward(t *testing.T) {
	errBody := errors.New("body failed")

	var seen []error
	observe := func(name string) Scope[string] {
		return Funcs[string]{
			OnExit: func(ctx context.Context, cause error) (bool, error) {
				seen = append(seen, cause)
				return false, nil
			},
		}
	}

	st, err := Enter(context.Background(), []Scope[string]{observe("outer"), observe("inner")})
	require.NoError(t, err)

	assert.ErrorIs(t, st.Exit(context.Background(), errBody), errBody)
	// innermost first, both see the body error
	require.Len(t, seen, 2)
	assert.ErrorIs(t, seen[0], errBody)
	assert.ErrorIs(t, seen[1], errBody)
}

func TestExitSuppressionStopsPropagation(t *testing.T) {
	errBody := errors.New("body failed")

	var outerSaw error
	outer := Funcs[string]{
		OnExit: func(ctx context.Context, cause error) (bool, error) {
			outerSaw = cause
			return false, nil
		},
	}
	suppressing := Funcs[string]{
		OnExit: func(ctx context.Context, cause error) (bool, error) {
			return true, nil
		},
	}

	st, err := Enter(context.Background(), []Scope[string]{outer, suppressing})
	require.NoError(t, err)

	assert.NoError(t, st.Exit(context.Background(), errBody))
	assert.NoError(t, outerSaw, "suppressed error must not reach outer scopes")
}

func TestExitReplacementReachesOuterScopes(t *testing.T) {
	errBody := errors.New("body failed")
	errReplaced := errors.New("replacement")

	var outerSaw error
	outer := Funcs[string]{
		OnExit: func(ctx context.Context, cause error) (bool, error) {
			outerSaw = cause
			return false, nil
		},
	}
	replacing := Funcs[string]{
		OnExit: func(ctx context.Context, cause error) (bool, error) {
			return false, errReplaced
		},
	}

	st, err := Enter(context.Background(), []Scope[string]{outer, replacing})
	require.NoError(t, err)

	err = st.Exit(context.Background(), errBody)
	assert.ErrorIs(t, err, errReplaced)
	assert.ErrorIs(t, outerSaw, errReplaced)
	// the replaced error is joined, not dropped
	assert.ErrorIs(t, err, errBody)
}

func TestExitFailuresAreJoined(t *testing.T) {
	errFirst := errors.New("first exit failed")
	errSecond := errors.New("second exit failed")

	failWith := func(err error) Scope[string] {
		return Funcs[string]{
			OnExit: func(ctx context.Context, cause error) (bool, error) {
				return false, err
			},
		}
	}

	st, err := Enter(context.Background(), []Scope[string]{failWith(errSecond), failWith(errFirst)})
	require.NoError(t, err)

	err = st.Exit(context.Background(), nil)
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errSecond)
	assert.Zero(t, st.Len())
}

func TestExitOnEmptyStackReturnsCause(t *testing.T) {
	st, err := Enter[string](context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, st.Values())

	errBody := errors.New("body failed")
	assert.ErrorIs(t, st.Exit(context.Background(), errBody), errBody)
	assert.NoError(t, st.Exit(context.Background(), nil))
}

func TestFuncsZeroValue(t *testing.T) {
	var sc Funcs[int]

	v, err := sc.Enter(context.Background())
	require.NoError(t, err)
	assert.Zero(t, v)

	suppressed, err := sc.Exit(context.Background(), errors.New("anything"))
	assert.False(t, suppressed)
	assert.NoError(t, err)
}
