package sequence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddAssignsInsertionOrderIDs(t *testing.T) {
	st := NewStore()
	id0, err := st.Add("alpha", []byte("ACGTACGT"))
	require.NoError(t, err)
	id1, err := st.Add("beta", []byte("TTTTACGT"))
	require.NoError(t, err)
	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)
	assert.Equal(t, []int{0, 1}, st.IDs())
	assert.Equal(t, int64(16), st.Bases())
}

func TestStoreAddRejectsInvalidInput(t *testing.T) {
	st := NewStore()
	_, err := st.Add("empty", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSequence))

	_, err = st.Add("bad", []byte("ACGTXACGT"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSequence))

	//one bad sequence must not poison the store
	id, err := st.Add("good", []byte("acgtnACGTN"))
	require.NoError(t, err)
	assert.Equal(t, 0, id)
}

func TestStoreGet(t *testing.T) {
	st := NewStore()
	id, err := st.Add("alpha", []byte("ACGT"))
	require.NoError(t, err)
	seq, err := st.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "alpha", seq.Name())
	assert.Equal(t, "ACGT", seq.String())

	_, err = st.Get(99)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = st.Get(-1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStoreCopiesInput(t *testing.T) {
	st := NewStore()
	data := []byte("ACGTACGT")
	id, err := st.Add("alpha", data)
	require.NoError(t, err)
	data[0] = 'T'
	seq, err := st.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGT", seq.String())
}

func TestSequenceCodes(t *testing.T) {
	st := NewStore()
	id, err := st.Add("mix", []byte("AcGtN"))
	require.NoError(t, err)
	seq, _ := st.Get(id)
	codes := make([]byte, seq.Len())
	for i := range codes {
		codes[i] = seq.Code(i)
	}
	assert.Equal(t, []byte{CodeA, CodeC, CodeG, CodeT, CodeN}, codes)
}

func TestReverseComplement(t *testing.T) {
	assert.Equal(t, []byte("ACGTN"), ReverseComplement([]byte("NACGT")))
	assert.Equal(t, []byte("acgt"), ReverseComplement([]byte("acgt")))
	//involution
	data := []byte("GGATCCNNTTACG")
	assert.Equal(t, data, ReverseComplement(ReverseComplement(data)))
}

func TestSliceClamping(t *testing.T) {
	st := NewStore()
	id, _ := st.Add("alpha", []byte("ACGTACGT"))
	seq, _ := st.Get(id)
	assert.Equal(t, []byte("ACGT"), seq.Slice(0, 4))
	assert.Equal(t, []byte("ACGT"), seq.Slice(4, 100))
	assert.Nil(t, seq.Slice(5, 5))
	assert.Nil(t, seq.Slice(7, 2))
}
