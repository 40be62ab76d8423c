package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/algemiroteran/canvabot/internal/entity"
	"github.com/algemiroteran/canvabot/internal/infra/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), "data", "clientes.json"))
}

// TestLoadCreatesEmptyFile - sin archivo, Load lo inicializa en [] y
// devuelve una lista vacía.
func TestLoadCreatesEmptyFile(t *testing.T) {
	st := newStore(t)

	customers, err := st.Load()
	assert.NoError(t, err)
	assert.Empty(t, customers)

	data, err := os.ReadFile(st.Path())
	assert.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

// TestSaveLoadRoundTrip - save(load()) no pierde ni reordena campos.
func TestSaveLoadRoundTrip(t *testing.T) {
	st := newStore(t)
	customers := []entity.Customer{
		{PhoneNumber: "57300", Email: "mi@correo.com", Status: entity.StatusPending, CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{PhoneNumber: "57301", Email: "otro@correo.com", Status: entity.StatusSold, CreatedAt: time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC)},
	}

	assert.NoError(t, st.Save(customers))

	loaded, err := st.Load()
	assert.NoError(t, err)
	assert.Equal(t, customers, loaded)

	assert.NoError(t, st.Save(loaded))
	reloaded, err := st.Load()
	assert.NoError(t, err)
	assert.Equal(t, customers, reloaded)
}

// TestUpsertDedupesByPhone - dos upserts del mismo número dejan un solo
// registro, con los datos del último.
func TestUpsertDedupesByPhone(t *testing.T) {
	st := newStore(t)

	first := entity.Customer{PhoneNumber: "57300", Email: "viejo@correo.com", Status: entity.StatusPending}
	assert.NoError(t, st.Upsert(first))

	second := first
	second.Email = "nuevo@correo.com"
	second.Status = entity.StatusSold
	assert.NoError(t, st.Upsert(second))

	customers, err := st.Load()
	assert.NoError(t, err)
	assert.Len(t, customers, 1)
	assert.Equal(t, "nuevo@correo.com", customers[0].Email)
	assert.Equal(t, entity.StatusSold, customers[0].Status)
}

func TestFindByPhone(t *testing.T) {
	st := newStore(t)
	assert.NoError(t, st.Upsert(entity.Customer{PhoneNumber: "57300", Email: "mi@correo.com", Status: entity.StatusPending}))

	found, err := st.FindByPhone("57300")
	assert.NoError(t, err)
	assert.NotNil(t, found)
	assert.Equal(t, "mi@correo.com", found.Email)

	missing, err := st.FindByPhone("99999")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSetStatus(t *testing.T) {
	st := newStore(t)
	assert.NoError(t, st.Upsert(entity.Customer{PhoneNumber: "57300", Email: "mi@correo.com", Status: entity.StatusPending}))

	changed, err := st.SetStatus("57300", entity.StatusActivated)
	assert.NoError(t, err)
	assert.True(t, changed)

	found, _ := st.FindByPhone("57300")
	assert.Equal(t, entity.StatusActivated, found.Status)

	changed, err = st.SetStatus("99999", entity.StatusActivated)
	assert.NoError(t, err)
	assert.False(t, changed)
}

// TestLoadNormalizesLegacyStatuses - un archivo escrito por la versión
// vieja (estados en español) se lee contra el conjunto cerrado.
func TestLoadNormalizesLegacyStatuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientes.json")
	legacy := `[{"phoneNumber":"57300","email":"mi@correo.com","status":"pendiente","createdAt":"2025-06-01T10:00:00Z"},
{"phoneNumber":"57301","email":"otro@correo.com","status":"vendido","createdAt":"2025-06-02T10:00:00Z"}]`
	assert.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	st := store.New(path)
	customers, err := st.Load()
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusPending, customers[0].Status)
	assert.Equal(t, entity.StatusSold, customers[1].Status)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientes.json")
	assert.NoError(t, os.WriteFile(path, []byte("{no es json"), 0o644))

	_, err := store.New(path).Load()
	assert.Error(t, err)
}
