package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "contracts.json"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrLedger)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	writeFile(t, path, `{"NFTMint": `)

	_, err := NewStore(path).Load()
	assert.ErrorIs(t, err, ErrLedger)
}

func TestLoadNotAnObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	writeFile(t, path, `["NFTMint"]`)

	_, err := NewStore(path).Load()
	assert.ErrorIs(t, err, ErrLedger)
}

func TestLoadNullIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	writeFile(t, path, `null`)

	l, err := NewStore(path).Load()
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Zero(t, l.Len())
}

func TestDeclaredThenDeployed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	writeFile(t, path, "{}")
	store := NewStore(path)

	l, err := store.Load()
	require.NoError(t, err)
	l.Declared("NFTMint", "0xabc")
	require.NoError(t, store.Save(l))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"NFTMint\": {\n    \"class_hash\": \"0xabc\"\n  }\n}\n", string(b))

	l, err = store.Load()
	require.NoError(t, err)
	require.NoError(t, l.Deployed("NFTMint", "0xdef"))
	require.NoError(t, store.Save(l))

	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"NFTMint\": {\n    \"class_hash\": \"0xabc\",\n    \"address\": \"0xdef\"\n  }\n}\n", string(b))

	_, err = os.Stat(path + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDeployedWithoutDeclare(t *testing.T) {
	l := New()
	l.Declared("Other", "0x1")

	err := l.Deployed("NFTMint", "0xdef")
	assert.ErrorIs(t, err, ErrMissingClassHash)
	_, ok := l.Get("NFTMint")
	assert.False(t, ok)
}

func TestClassHashEmptyRecord(t *testing.T) {
	l := New()
	l.set("NFTMint", Record{})

	_, err := l.ClassHash("NFTMint")
	assert.ErrorIs(t, err, ErrMissingClassHash)
}

func TestRedeclareDropsAddress(t *testing.T) {
	l := New()
	l.set("NFTMint", Record{ClassHash: "0xabc", Address: "0xdef"})

	l.Declared("NFTMint", "0xabc")
	rec, _ := l.Get("NFTMint")
	assert.Equal(t, Record{ClassHash: "0xabc"}, rec)
}

func TestSaveKeepsOtherEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "contracts.json")
	store := NewStore(path)

	l := New()
	l.set("Registry", Record{ClassHash: "0x1", Address: "0x2"})
	l.Declared("NFTMint", "0xabc")
	require.NoError(t, store.Save(l))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Registry", "NFTMint"}, loaded.Names())
	rec, ok := loaded.Get("Registry")
	require.True(t, ok)
	assert.Equal(t, Record{ClassHash: "0x1", Address: "0x2"}, rec)
}

func TestSaveKeepsFileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	writeFile(t, path, `{"Zeta":{"class_hash":"0x1"},"Alpha":{"class_hash":"0x2","address":"0x3"}}`)
	store := NewStore(path)

	l, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta", "Alpha"}, l.Names())

	l.Declared("Alpha", "0x4")
	l.Declared("Mid", "0x5")
	require.NoError(t, store.Save(l))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{
  "Zeta": {
    "class_hash": "0x1"
  },
  "Alpha": {
    "class_hash": "0x4"
  },
  "Mid": {
    "class_hash": "0x5"
  }
}
`, string(b))
}

func TestSaveDoesNotEscapeHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	store := NewStore(path)

	l := New()
	l.Declared("Vault<A&B>", "0x1")
	require.NoError(t, store.Save(l))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"Vault<A&B>"`)
	assert.NotContains(t, string(b), `\u003c`)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Vault<A&B>"}, loaded.Names())
}

func TestSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	require.NoError(t, NewStore(path).Save(New()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(b))
}

func TestLoadDuplicateKeyKeepsFirstPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	writeFile(t, path, `{"A":{"class_hash":"0x1"},"B":{"class_hash":"0x2"},"A":{"class_hash":"0x3"}}`)

	l, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, l.Names())
	hash, err := l.ClassHash("A")
	require.NoError(t, err)
	assert.Equal(t, "0x3", hash)
}

func TestPhase(t *testing.T) {
	assert.Equal(t, PhaseUndeclared, Record{}.Phase())
	assert.Equal(t, PhaseDeclared, Record{ClassHash: "0x1"}.Phase())
	assert.Equal(t, PhaseDeployed, Record{ClassHash: "0x1", Address: "0x2"}.Phase())
}
