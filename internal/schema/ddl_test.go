package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTableSQLQuotesReservedNames(t *testing.T) {
	user := TableByName("user")
	require.NotNil(t, user)

	sql := CreateTableSQL(*user)
	assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "user"`)
	assert.Contains(t, sql, `"email" text NOT NULL UNIQUE`)
	assert.Contains(t, sql, `PRIMARY KEY ("id")`)
}

func TestCreateTableSQLCompositePrimaryKey(t *testing.T) {
	join := TableByName("service_to_categories")
	require.NotNil(t, join)

	sql := CreateTableSQL(*join)
	assert.Contains(t, sql, `PRIMARY KEY ("service_id", "category_id")`)
}

func TestCreateTableSQLEmbedsCheckConstraint(t *testing.T) {
	location := TableByName("location")
	require.NotNil(t, location)

	sql := CreateTableSQL(*location)
	assert.Contains(t, sql, `CONSTRAINT "location_geo_type_check" CHECK`)
	assert.Contains(t, sql, "GeometryType(geom) = 'MULTIPOLYGON'")
	assert.Contains(t, sql, `"geom" geometry(Geometry,4326)`)
}

func TestForeignKeySQLCascadeRule(t *testing.T) {
	var provider, customer Relation
	for _, r := range ForeignKeys() {
		switch r.Name {
		case "service_provider_user":
			provider = r
		case "customer_user":
			customer = r
		}
	}

	providerSQL := ForeignKeySQL(provider)
	assert.Contains(t, providerSQL, `ALTER TABLE "service_provider"`)
	assert.Contains(t, providerSQL, `REFERENCES "user" ("id") ON DELETE CASCADE`)

	customerSQL := ForeignKeySQL(customer)
	assert.Contains(t, customerSQL, "ON DELETE NO ACTION")
}

func TestIndexSQL(t *testing.T) {
	sql := IndexSQL("location", Index{Name: "geo_idx", Columns: []string{"geom"}, Using: "gist"})
	assert.Equal(t, `CREATE INDEX IF NOT EXISTS "geo_idx" ON "location" USING gist ("geom");`, sql)

	sql = IndexSQL("address", Index{Name: "address_title_idx", Columns: []string{"title"}})
	assert.Equal(t, `CREATE INDEX IF NOT EXISTS "address_title_idx" ON "address" ("title");`, sql)
}

func TestEnumSQLGuardsCreation(t *testing.T) {
	sql := EnumSQL(Enum{Name: "location_type", Values: []string{"point", "polygon", "multipolygon"}})
	assert.Contains(t, sql, "FROM pg_type WHERE typname = 'location_type'")
	assert.Contains(t, sql, `CREATE TYPE "location_type" AS ENUM ('point', 'polygon', 'multipolygon')`)
}

func TestStatementsOrderAndCompleteness(t *testing.T) {
	stmts := Statements()
	require.NotEmpty(t, stmts)

	assert.Equal(t, "CREATE EXTENSION IF NOT EXISTS postgis;", stmts[0], "PostGIS before any geometry column")

	joined := strings.Join(stmts, "\n")
	for _, tbl := range Tables() {
		assert.Contains(t, joined, `CREATE TABLE IF NOT EXISTS "`+tbl.Name+`"`)
	}
	for _, fk := range ForeignKeys() {
		assert.Contains(t, joined, fk.Name+"_fkey")
	}
	assert.Contains(t, joined, "CREATE OR REPLACE FUNCTION set_updated_at()")

	// Every table with an updated_at column gets the trigger; every
	// trigger statement comes after the function definition.
	fnAt := strings.Index(joined, "set_updated_at() RETURNS trigger")
	for _, tbl := range Tables() {
		if tbl.column("updated_at") == nil {
			continue
		}
		trigger := `CREATE TRIGGER "` + tbl.Name + `_set_updated_at"`
		at := strings.Index(joined, trigger)
		require.GreaterOrEqual(t, at, 0, "missing trigger for %s", tbl.Name)
		assert.Greater(t, at, fnAt)
	}

	// The join table has no updated_at and must not get a trigger.
	assert.NotContains(t, joined, `"service_to_categories_set_updated_at"`)
}
