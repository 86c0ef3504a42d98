package secret

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/recapbot/recapbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data map[uuid.UUID][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[uuid.UUID][]byte{}}
}

func (m *memStore) Insert(ctx context.Context, id uuid.UUID, ciphertext []byte) error {
	m.data[id] = ciphertext
	return nil
}

func (m *memStore) Ciphertext(ctx context.Context, id uuid.UUID) ([]byte, error) {
	ct, ok := m.data[id]
	if !ok {
		return nil, domain.ErrSecretNotFound
	}
	return ct, nil
}

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestSealRevealRoundtrip(t *testing.T) {
	store := newMemStore()
	codec, err := NewCodec(testKey, store)
	require.NoError(t, err)

	ref, err := codec.Seal(context.Background(), "sk-very-secret")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, ref)

	got, err := codec.Reveal(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "sk-very-secret", got)
}

func TestSealNeverStoresPlaintext(t *testing.T) {
	store := newMemStore()
	codec, err := NewCodec(testKey, store)
	require.NoError(t, err)

	ref, err := codec.Seal(context.Background(), "sk-very-secret")
	require.NoError(t, err)
	assert.NotContains(t, string(store.data[ref]), "sk-very-secret")
}

func TestSealDistinctCiphertexts(t *testing.T) {
	store := newMemStore()
	codec, err := NewCodec(testKey, store)
	require.NoError(t, err)

	a, err := codec.Seal(context.Background(), "same")
	require.NoError(t, err)
	b, err := codec.Seal(context.Background(), "same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, store.data[a], store.data[b], "fresh nonce per seal")
}

func TestNewCodecRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"not hex", "zz"},
		{"too short", "0123456789abcdef"},
		{"too long", testKey + "00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodec(tt.key, newMemStore())
			assert.Error(t, err)
		})
	}
}

func TestRevealTamperedCiphertext(t *testing.T) {
	store := newMemStore()
	codec, err := NewCodec(testKey, store)
	require.NoError(t, err)

	ref, err := codec.Seal(context.Background(), "sk-very-secret")
	require.NoError(t, err)

	store.data[ref][len(store.data[ref])-1] ^= 0xff
	_, err = codec.Reveal(context.Background(), ref)
	assert.ErrorContains(t, err, "decrypt secret")
}

func TestRevealUnknownReference(t *testing.T) {
	codec, err := NewCodec(testKey, newMemStore())
	require.NoError(t, err)

	_, err = codec.Reveal(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestRevealTruncatedCiphertext(t *testing.T) {
	store := newMemStore()
	codec, err := NewCodec(testKey, store)
	require.NoError(t, err)

	ref := uuid.New()
	store.data[ref] = []byte{0x01, 0x02}

	_, err = codec.Reveal(context.Background(), ref)
	assert.ErrorContains(t, err, "too short")
}
