package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorsValidate(t *testing.T) {
	require.NoError(t, Validate())
}

func TestAllTablesDeclared(t *testing.T) {
	want := []string{
		"user", "session", "account", "verification",
		"user_metadata", "customer", "service_provider",
		"service", "post", "media", "category",
		"service_to_categories", "address", "location",
	}

	var got []string
	for _, tbl := range Tables() {
		got = append(got, tbl.Name)
	}
	assert.ElementsMatch(t, want, got)
}

func relationByName(t *testing.T, name string) Relation {
	t.Helper()
	for _, r := range Relations() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("relation %q not declared", name)
	return Relation{}
}

func TestProviderProfileIsUniquePerUserAndCascades(t *testing.T) {
	tbl := TableByName("service_provider")
	require.NotNil(t, tbl)

	userID := tbl.column("user_id")
	require.NotNil(t, userID)
	assert.True(t, userID.Unique, "at most one provider profile per user")
	assert.True(t, userID.NotNull)

	rel := relationByName(t, "service_provider_user")
	assert.Equal(t, OneToOne, rel.Cardinality)
	assert.Equal(t, Cascade, rel.OnDelete)
}

func TestOnlyProviderProfileCascades(t *testing.T) {
	for _, r := range ForeignKeys() {
		if r.Name == "service_provider_user" {
			continue
		}
		assert.NotEqual(t, Cascade, r.OnDelete,
			"relation %s must not cascade: only the provider profile is removed with its user", r.Name)
	}
}

func TestUserMetadataIsOneToOne(t *testing.T) {
	tbl := TableByName("user_metadata")
	require.NotNil(t, tbl)

	userID := tbl.column("user_id")
	require.NotNil(t, userID)
	assert.True(t, userID.Unique, "at most one metadata row per user")

	roles := tbl.column("roles")
	require.NotNil(t, roles)
	assert.Equal(t, "role[]", roles.Type)
	assert.True(t, roles.NotNull)
	assert.Equal(t, "'{user}'::role[]", roles.Default)
}

func TestJoinTableHasCompositePrimaryKey(t *testing.T) {
	tbl := TableByName("service_to_categories")
	require.NotNil(t, tbl)
	assert.Equal(t, []string{"service_id", "category_id"}, tbl.PrimaryKey)

	// Both halves are enforced foreign keys.
	service := relationByName(t, "service_to_categories_service")
	category := relationByName(t, "service_to_categories_category")
	assert.True(t, service.Enforced)
	assert.True(t, category.Enforced)
}

func TestMediaAssociationsAreNotEnforced(t *testing.T) {
	post := relationByName(t, "media_post")
	service := relationByName(t, "media_service")
	assert.False(t, post.Enforced)
	assert.False(t, service.Enforced)

	for _, fk := range ForeignKeys() {
		assert.NotEqual(t, "media", fk.Table, "media columns carry no foreign keys")
	}
}

func TestLocationGeometryCheckCoversAllEnumValues(t *testing.T) {
	tbl := TableByName("location")
	require.NotNil(t, tbl)
	require.Len(t, tbl.Checks, 1)

	check := tbl.Checks[0]
	assert.Equal(t, "location_geo_type_check", check.Name)
	for _, pair := range [][2]string{
		{"'point'", "'POINT'"},
		{"'polygon'", "'POLYGON'"},
		{"'multipolygon'", "'MULTIPOLYGON'"},
	} {
		assert.Contains(t, check.Expr, "type = "+pair[0])
		assert.Contains(t, check.Expr, "GeometryType(geom) = "+pair[1])
	}

	geom := tbl.column("geom")
	require.NotNil(t, geom)
	assert.Equal(t, "geometry(Geometry,4326)", geom.Type, "SRID is fixed to WGS84")
}

func TestDeclaredIndexes(t *testing.T) {
	want := map[string]string{
		"user_roles_idx":            "user_metadata",
		"locale_idx":                "user_metadata",
		"address_title_idx":         "address",
		"geo_idx":                   "location",
		"location_name_idx":         "location",
		"location_full_address_idx": "location",
	}

	got := map[string]string{}
	for _, tbl := range Tables() {
		for _, idx := range tbl.Indexes {
			got[idx.Name] = tbl.Name
		}
	}
	assert.Equal(t, want, got)

	location := TableByName("location")
	for _, idx := range location.Indexes {
		if idx.Name == "geo_idx" {
			assert.Equal(t, "gist", idx.Using, "spatial index uses gist")
		}
	}
}

func TestValidateCatchesBrokenRelation(t *testing.T) {
	// Exercise the validator directly against a broken edge: the real
	// descriptors must not regress into this.
	r := Relation{Name: "bogus", Cardinality: OneToMany, Table: "media", Column: "nope", RefTable: "post", RefColumn: "id", Enforced: true}
	owner := TableByName(r.Table)
	require.NotNil(t, owner)
	assert.Nil(t, owner.column(r.Column))
}
