package chain

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panbundle/fingerprint"
	"panbundle/sequence"
)

func randomBases(n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	bases := []byte("ACGT")
	out := make([]byte, n)
	for i := range out {
		out[i] = bases[rng.Intn(4)]
	}
	return out
}

func indexOf(t *testing.T, seqs ...[]byte) *fingerprint.Index {
	t.Helper()
	st := sequence.NewStore()
	for _, s := range seqs {
		_, err := st.Add("", s)
		require.NoError(t, err)
	}
	ix, err := fingerprint.Build(context.Background(), st, 12, 8, 2)
	require.NoError(t, err)
	return ix
}

func testOptions() Options {
	return Options{GapTolerance: 16, MaxGap: 200, MinAnchors: 4}
}

func TestFindSharedRegion(t *testing.T) {
	shared := randomBases(300, 1)
	a := append(append(randomBases(100, 2), shared...), randomBases(100, 3)...)
	b := append(append(randomBases(150, 4), shared...), randomBases(50, 5)...)
	ix := indexOf(t, a, b)

	chains := Find(ix, 0, 1, testOptions())
	require.Len(t, chains, 1)
	c := chains[0]
	assert.False(t, c.Reverse)
	assert.Equal(t, 0, c.SeqA)
	assert.Equal(t, 1, c.SeqB)
	aStart, aEnd := c.ASpan(12)
	require.Less(t, aStart, aEnd)
	//the chain must sit at the shared region, roughly covering it; a
	//boundary anchor can start up to k-1 bases into a coincidental match
	assert.GreaterOrEqual(t, aStart, 100-12)
	assert.LessOrEqual(t, aEnd, 400+12)
	assert.Greater(t, aEnd-aStart, 200)
	//diagonal offset between the two placements is 50
	bStart, bEnd := c.BSpan(12)
	assert.InDelta(t, 50, bStart-aStart, 1)
	assert.InDelta(t, 50, bEnd-aEnd, 1)
}

func TestFindReverseStrand(t *testing.T) {
	shared := randomBases(300, 6)
	a := append(append(randomBases(80, 7), shared...), randomBases(80, 8)...)
	b := append(append(randomBases(60, 9), sequence.ReverseComplement(shared)...), randomBases(120, 10)...)
	ix := indexOf(t, a, b)

	chains := Find(ix, 0, 1, testOptions())
	require.Len(t, chains, 1)
	c := chains[0]
	assert.True(t, c.Reverse)
	aStart, aEnd := c.ASpan(12)
	bStart, bEnd := c.BSpan(12)
	assert.Greater(t, aEnd-aStart, 200)
	assert.Greater(t, bEnd-bStart, 200)
	//B span is reported in forward coordinates
	assert.GreaterOrEqual(t, bStart, 60-12)
	assert.LessOrEqual(t, bEnd, 360+12)
}

func TestFindUnrelatedSequences(t *testing.T) {
	ix := indexOf(t, randomBases(400, 11), randomBases(400, 12))
	assert.Empty(t, Find(ix, 0, 1, testOptions()))
}

func TestFindSelfExcludesTrivialDiagonal(t *testing.T) {
	ix := indexOf(t, randomBases(500, 13))
	//a random sequence has no genuine internal repeats
	assert.Empty(t, Find(ix, 0, 0, testOptions()))
}

func TestFindSelfInternalRepeat(t *testing.T) {
	repeat := randomBases(250, 14)
	seq := append(append(append(randomBases(100, 15), repeat...), randomBases(100, 16)...), repeat...)
	ix := indexOf(t, seq)

	chains := Find(ix, 0, 0, testOptions())
	require.NotEmpty(t, chains)
	//every reported chain must link the two repeat copies, not the trivial diagonal
	for _, c := range chains {
		aStart, _ := c.ASpan(12)
		bStart, _ := c.BSpan(12)
		assert.NotEqual(t, aStart, bStart)
	}
}

func TestChainsDisjointInA(t *testing.T) {
	shared1 := randomBases(250, 17)
	shared2 := randomBases(250, 18)
	a := append(append(append(randomBases(60, 19), shared1...), randomBases(120, 20)...), shared2...)
	//b places the two shared blocks on very different diagonals
	b := append(append(append(randomBases(400, 21), shared1...), randomBases(300, 22)...), shared2...)
	ix := indexOf(t, a, b)

	chains := Find(ix, 0, 1, testOptions())
	require.Len(t, chains, 2)
	for i := 1; i < len(chains); i++ {
		_, prevEnd := chains[i-1].ASpan(12)
		start, _ := chains[i].ASpan(12)
		assert.GreaterOrEqual(t, start, prevEnd)
	}
}

func TestMinAnchorsFilter(t *testing.T) {
	shared := randomBases(300, 23)
	a := append(randomBases(100, 24), shared...)
	b := append(randomBases(200, 25), shared...)
	ix := indexOf(t, a, b)

	opt := testOptions()
	opt.MinAnchors = 10000
	assert.Empty(t, Find(ix, 0, 1, opt))
}
