package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrations(migrationsFS)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "0001_orders", migrations[0].label())
	assert.Contains(t, migrations[0].Up, "CREATE TABLE IF NOT EXISTS order_items")
	assert.Contains(t, migrations[0].Down, "DROP TABLE IF EXISTS orders")

	assert.Equal(t, "0002_products", migrations[1].label())
	assert.Contains(t, migrations[1].Up, "stock      INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0)")
	assert.Len(t, migrations[1].Checksum, 64)
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}

func TestLoadMigrations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   fstest.MapFS
		wantErr string
	}{
		{
			name: "missing down",
			files: fstest.MapFS{
				"sql/migrations/0001_orders.up.sql": {Data: []byte("CREATE TABLE orders (id TEXT);")},
			},
			wantErr: "0001_orders must have both up and down files",
		},
		{
			name: "invalid file name",
			files: fstest.MapFS{
				"sql/migrations/orders.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "invalid migration file name: orders.sql",
		},
		{
			name: "empty body",
			files: fstest.MapFS{
				"sql/migrations/0001_orders.up.sql":   {Data: []byte("  \n")},
				"sql/migrations/0001_orders.down.sql": {Data: []byte("DROP TABLE orders;")},
			},
			wantErr: "migration file is empty: 0001_orders.up.sql",
		},
		{
			name: "name mismatch",
			files: fstest.MapFS{
				"sql/migrations/0002_products.up.sql":  {Data: []byte("CREATE TABLE products (id TEXT);")},
				"sql/migrations/0002_catalog.down.sql": {Data: []byte("DROP TABLE products;")},
			},
			wantErr: "migration name mismatch for version 2",
		},
		{
			name:    "no files",
			files:   fstest.MapFS{"sql/migrations/README": {Data: []byte("docs")}},
			wantErr: "no migration files found",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := loadMigrations(tt.files)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMigrationsSortsByVersion(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrations(fstest.MapFS{
		"sql/migrations/0010_refunds.up.sql":    {Data: []byte("CREATE TABLE refunds (id TEXT);")},
		"sql/migrations/0010_refunds.down.sql":  {Data: []byte("DROP TABLE refunds;")},
		"sql/migrations/0002_products.up.sql":   {Data: []byte("CREATE TABLE products (id TEXT);")},
		"sql/migrations/0002_products.down.sql": {Data: []byte("DROP TABLE products;")},
	})
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, int64(2), migrations[0].Version)
	assert.Equal(t, int64(10), migrations[1].Version)
}

func applied(ms ...migration) map[int64]appliedMigration {
	out := make(map[int64]appliedMigration, len(ms))
	for _, m := range ms {
		out[m.Version] = appliedMigration{
			MigrationRecord: MigrationRecord{Version: m.Version, Name: m.Name},
			checksum:        m.Checksum,
		}
	}
	return out
}

func labels(plan []migration) []string {
	out := make([]string, 0, len(plan))
	for _, m := range plan {
		out = append(out, m.label())
	}
	return out
}

func TestPlanMigrations(t *testing.T) {
	t.Parallel()

	known, err := loadMigrations(migrationsFS)
	require.NoError(t, err)
	orders, products := known[0], known[1]

	plan, err := planMigrations(known, applied(), migrationUp, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_orders", "0002_products"}, labels(plan))

	plan, err = planMigrations(known, applied(), migrationUp, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_orders"}, labels(plan))

	plan, err = planMigrations(known, applied(orders), migrationUp, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_products"}, labels(plan))

	plan, err = planMigrations(known, applied(orders, products), migrationUp, 0)
	require.NoError(t, err)
	assert.Empty(t, plan)

	plan, err = planMigrations(known, applied(orders, products), migrationDown, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_products"}, labels(plan))

	plan, err = planMigrations(known, applied(orders, products), migrationDown, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_products", "0001_orders"}, labels(plan))

	plan, err = planMigrations(known, applied(), migrationDown, 1)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestPlanMigrationsDetectsEditedFile(t *testing.T) {
	t.Parallel()

	known, err := loadMigrations(migrationsFS)
	require.NoError(t, err)

	drifted := known[0]
	drifted.Checksum = "0000"
	_, err = planMigrations(known, applied(drifted), migrationUp, 0)
	require.ErrorIs(t, err, ErrMigrationChecksum)
	assert.Contains(t, err.Error(), "0001_orders")
}

func TestPlanMigrationsUnknownAppliedVersion(t *testing.T) {
	t.Parallel()

	known, err := loadMigrations(migrationsFS)
	require.NoError(t, err)

	ghost := migration{Version: 99, Name: "ghost"}
	_, err = planMigrations(known, applied(known[0], ghost), migrationDown, 1)
	require.ErrorContains(t, err, "unknown migration version 99")
}

func TestParseMigrationFile(t *testing.T) {
	t.Parallel()

	version, name, direction, err := parseMigrationFile("0002_products.down.sql")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.Equal(t, "products", name)
	assert.Equal(t, migrationDown, direction)

	_, _, _, err = parseMigrationFile("0002_Products.up.sql")
	assert.Error(t, err)
	_, _, _, err = parseMigrationFile("0002_products.sideways.sql")
	assert.Error(t, err)
}

func TestMigrationRecordLabel(t *testing.T) {
	assert.Equal(t, "0002_products", MigrationRecord{Version: 2, Name: "products"}.Label())
}
