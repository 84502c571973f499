package fault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListReturnsLabelsInDeclarationOrder(t *testing.T) {
	reg := NewRegistry()

	want := []string{
		"PANIC",
		"BUG",
		"EXCEPTION",
		"LOOP",
		"OVERFLOW",
		"CORRUPT_STACK",
		"UNALIGNED_LOAD_STORE_WRITE",
		"OVERWRITE_ALLOCATION",
		"WRITE_AFTER_FREE",
		"SOFTLOCKUP",
		"HARDLOCKUP",
		"HUNG_TASK",
		"SCHEDULING_WHILE_ATOMIC",
		"DEADLOCK",
	}
	got := reg.List()

	assert.Equal(t, want, got)
	assert.Len(t, got, 14)
	assert.Equal(t, "PANIC", got[0])
	assert.Equal(t, "DEADLOCK", got[len(got)-1])
}

func TestListCopiesAreIndependent(t *testing.T) {
	reg := NewRegistry()

	first := reg.List()
	first[0] = "tampered"

	assert.Equal(t, "PANIC", reg.List()[0])
}

func TestResolveRoundTripsEveryLabel(t *testing.T) {
	reg := NewRegistry()

	for _, label := range reg.List() {
		kind := reg.Resolve(label)
		require.NotEqual(t, KindNone, kind, "label %q did not resolve", label)

		rec, ok := reg.Recipe(kind)
		require.True(t, ok, "kind %v has no recipe", kind)
		assert.Equal(t, label, rec.Label)
		assert.Equal(t, kind, rec.Kind)
	}
}

func TestResolveIsExactAndCaseSensitive(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"lowercase", "panic"},
		{"leading space", " PANIC"},
		{"trailing newline", "PANIC\n"},
		{"trailing space", "BUG "},
		{"near miss", "DEADLOCKS"},
		{"embedded NUL", "PANIC\x00"},
		{"unrelated", "reboot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, KindNone, reg.Resolve(tt.input))
		})
	}
}

func TestEveryKindCarriesACompleteRecipe(t *testing.T) {
	reg := NewRegistry()

	for k := KindPanic; k <= KindDeadlock; k++ {
		rec, ok := reg.Recipe(k)
		require.True(t, ok, "kind %v has no recipe", k)
		assert.Equal(t, k.String(), rec.Label)
		assert.NotEmpty(t, rec.Summary)
		assert.NotEmpty(t, rec.Signature)
		assert.NotNil(t, rec.Run)
	}
}

func TestNoneHasNoRecipe(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Recipe(KindNone)
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "NONE", KindNone.String())
	assert.Equal(t, "PANIC", KindPanic.String())
	assert.Equal(t, "SCHEDULING_WHILE_ATOMIC", KindSchedulingWhileAtomic.String())
	assert.Equal(t, "DEADLOCK", KindDeadlock.String())
	assert.Equal(t, "NONE", Kind(-3).String())
	assert.Equal(t, "NONE", Kind(99).String())
}

func TestLockIDString(t *testing.T) {
	assert.Equal(t, "sleep_lock", LockSleep.String())
	assert.Equal(t, "atomic_lock", LockAtomic.String())
	assert.Equal(t, "lock1", LockOne.String())
	assert.Equal(t, "lock2", LockTwo.String())
	assert.Equal(t, "unknown_lock", LockID(42).String())
}
