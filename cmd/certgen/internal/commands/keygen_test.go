package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/certgen/internal/keypair"
	"github.com/wolfeidau/certgen/internal/keystore"
)

func testGlobals(t *testing.T) (*Globals, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	return &Globals{Home: t.TempDir(), Stdout: &buf}, &buf
}

func TestKeygenCmd_Run(t *testing.T) {
	globals, out := testGlobals(t)

	cmd := &KeygenCmd{
		Name:      "intermediate",
		Algorithm: "ecdsa-p384-sha384",
		RSABits:   2048,
	}

	err := cmd.Run(context.Background(), globals)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(globals.Home, "intermediate.key"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(globals.Home, "intermediate.pub"))
	require.NoError(t, err)

	store, err := keystore.NewStore(globals.Home)
	require.NoError(t, err)

	entry, err := store.Get("intermediate")
	require.NoError(t, err)
	assert.Equal(t, "ecdsa-p384-sha384", entry.Algorithm)

	assert.Contains(t, out.String(), "Generated key: intermediate")
	assert.Contains(t, out.String(), entry.Fingerprint)
	assert.Contains(t, out.String(), "-----BEGIN PUBLIC KEY-----")
}

func TestKeygenCmd_Duplicate(t *testing.T) {
	globals, _ := testGlobals(t)

	cmd := &KeygenCmd{Name: "ca", Algorithm: "ed25519", RSABits: 2048}

	err := cmd.Run(context.Background(), globals)
	require.NoError(t, err)

	err = cmd.Run(context.Background(), globals)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestKeygenCmd_SetDefault(t *testing.T) {
	globals, _ := testGlobals(t)

	err := (&KeygenCmd{Name: "first", Algorithm: "ed25519", RSABits: 2048}).Run(context.Background(), globals)
	require.NoError(t, err)
	err = (&KeygenCmd{Name: "second", Algorithm: "ed25519", RSABits: 2048, SetDefault: true}).Run(context.Background(), globals)
	require.NoError(t, err)

	store, err := keystore.NewStore(globals.Home)
	require.NoError(t, err)
	def, err := store.GetDefault()
	require.NoError(t, err)
	assert.Equal(t, "second", def.Name)
}

func TestKeygenCmd_Errors(t *testing.T) {
	t.Run("unknown algorithm", func(t *testing.T) {
		globals, _ := testGlobals(t)

		err := (&KeygenCmd{Name: "x", Algorithm: "dsa-sha1", RSABits: 2048}).Run(context.Background(), globals)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown algorithm")
	})

	t.Run("bad RSA size", func(t *testing.T) {
		globals, _ := testGlobals(t)

		err := (&KeygenCmd{Name: "x", Algorithm: "rsa-sha256", RSABits: 1024}).Run(context.Background(), globals)
		require.Error(t, err)
	})

	t.Run("portable backend cannot generate RSA", func(t *testing.T) {
		globals, _ := testGlobals(t)
		globals.Backend = keypair.BackendPortable

		err := (&KeygenCmd{Name: "x", Algorithm: "rsa-sha256", RSABits: 2048}).Run(context.Background(), globals)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "portable backend cannot generate")
	})
}
