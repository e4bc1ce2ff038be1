package symbolize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripLocationDropsLineNumber(t *testing.T) {
	require.Equal(t, "/src/spin.c", stripLocation("/src/spin.c:42"))
}

func TestStripLocationDropsDiscriminator(t *testing.T) {
	require.Equal(t, "/src/spin.c", stripLocation("/src/spin.c:42 (discriminator 2)"))
}

func TestStripLocationPassesThroughUnresolved(t *testing.T) {
	require.Equal(t, "??", stripLocation("??:0"))
}

func TestResolveFailsClosedOnMissingBinary(t *testing.T) {
	s := NewSymbolizer("/no/such/executable", nil)
	require.Equal(t, unresolved, s.Resolve(0x1000))
}
