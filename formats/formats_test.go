package formats

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panbundle/align"
	"panbundle/graph"
	"panbundle/sequence"
)

func fixedStore(t *testing.T) *sequence.Store {
	t.Helper()
	st := sequence.NewStore()
	_, err := st.Add("alpha", []byte("ACGTACGTACACGTACGTACACGTACGTAC"))
	require.NoError(t, err)
	_, err = st.Add("beta", []byte("TTTTTACGTACGTACACGTACGTACTTTTT"))
	require.NoError(t, err)
	return st
}

func fixedGraph(t *testing.T, st *sequence.Store) *graph.Graph {
	t.Helper()
	overlaps := []align.Overlap{
		{SeqA: 0, SeqB: 1, AStart: 0, AEnd: 20, BStart: 5, BEnd: 25, Identity: 0.95},
	}
	return graph.Build(st, overlaps, graph.DefaultOptions())
}

func TestWriteGraphTSVGolden(t *testing.T) {
	st := fixedStore(t)
	g := fixedGraph(t, st)
	var buf bytes.Buffer
	require.NoError(t, WriteGraphTSV(&buf, st, g))
	gold := goldie.New(t)
	gold.Assert(t, "graph_tsv", buf.Bytes())
}

func TestWriteOverlapsTSV(t *testing.T) {
	st := fixedStore(t)
	overlaps := []align.Overlap{
		{SeqA: 0, SeqB: 1, AStart: 0, AEnd: 20, BStart: 5, BEnd: 25, Identity: 0.95},
		{SeqA: 0, SeqB: 1, AStart: 2, AEnd: 22, BStart: 3, BEnd: 23, Reverse: true, Identity: 0.8},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteOverlapsTSV(&buf, st, overlaps))
	want := "alpha\t30\t0\t20\t+\tbeta\t30\t5\t25\t0.9500\n" +
		"alpha\t30\t2\t22\t-\tbeta\t30\t3\t23\t0.8000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteBundleBED(t *testing.T) {
	st := fixedStore(t)
	g := fixedGraph(t, st)
	var buf bytes.Buffer
	require.NoError(t, WriteBundleBED(&buf, st, g))
	want := "alpha\t0\t20\tbundle_0\n" +
		"beta\t5\t25\tbundle_0\n"
	assert.Equal(t, want, buf.String())
}
