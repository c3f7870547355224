package repositories

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p60/intake-bot/internal/models"
	"github.com/p2p60/intake-bot/internal/security"
)

func TestSaveAndListConnections(t *testing.T) {
	repo := NewConnectionRepo(newTestDB(t), nil)

	_, err := repo.SaveConnection(models.Connection{
		TgUserID:     "100500",
		TgUsername:   "@alice",
		Kind:         models.ConnectionExchange,
		ExchangeName: "Binance",
		Identifier:   "uid-0001",
	})
	require.NoError(t, err)

	_, err = repo.SaveConnection(models.Connection{
		TgUserID:   "100500",
		TgUsername: "@alice",
		Kind:       models.ConnectionWallet,
		Network:    "TRC20",
		Identifier: "TXabcdefgh123456",
	})
	require.NoError(t, err)

	connections, err := repo.ListConnections("100500")
	require.NoError(t, err)
	require.Len(t, connections, 2)
	// Newest first.
	assert.Equal(t, models.ConnectionWallet, connections[0].Kind)
	assert.Equal(t, "TXabcdefgh123456", connections[0].Identifier)
	assert.Equal(t, models.ConnectionExchange, connections[1].Kind)
}

func TestListConnections_OtherUserIsEmpty(t *testing.T) {
	repo := NewConnectionRepo(newTestDB(t), nil)

	_, err := repo.SaveConnection(models.Connection{
		TgUserID:   "100500",
		Kind:       models.ConnectionWallet,
		Network:    "TON",
		Identifier: "UQabcdef123456",
	})
	require.NoError(t, err)

	connections, err := repo.ListConnections("200600")
	require.NoError(t, err)
	assert.Empty(t, connections)
}

func TestConnections_EncryptedAtRest(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	cipher, err := security.NewCipher(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)

	db := newTestDB(t)
	repo := NewConnectionRepo(db, cipher)

	id, err := repo.SaveConnection(models.Connection{
		TgUserID:   "100500",
		Kind:       models.ConnectionWallet,
		Network:    "TRC20",
		Identifier: "TXsecretaddress42",
	})
	require.NoError(t, err)

	// The stored column must not contain the plaintext.
	var stored string
	err = db.QueryRow(`SELECT identifier FROM connections WHERE id=?`, id).Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "TXsecretaddress42", stored)

	// The read path decrypts transparently.
	connections, err := repo.ListConnections("100500")
	require.NoError(t, err)
	require.Len(t, connections, 1)
	assert.Equal(t, "TXsecretaddress42", connections[0].Identifier)
}
