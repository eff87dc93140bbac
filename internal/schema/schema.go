// Package schema declares the canonical persisted data model: every table,
// column, constraint and index, plus an explicit relation list. The
// descriptors are plain data — nothing here is discovered by reflection —
// and the storage engine is the only enforcement point for the integrity
// rules they declare. Table and column names are lower snake_case and must
// be preserved exactly for migration/interop.
package schema

// Column describes one table column.
type Column struct {
	Name    string
	Type    string // PostgreSQL type, verbatim
	NotNull bool
	Default string // SQL expression, empty for none
	Unique  bool
}

// Check is a named CHECK constraint.
type Check struct {
	Name string
	Expr string
}

// Index is a named secondary index. Using selects the access method;
// empty means btree.
type Index struct {
	Name    string
	Columns []string
	Using   string
}

// Table describes one persisted entity.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
	Checks     []Check
	Indexes    []Index
}

// Enum is a named PostgreSQL enum type.
type Enum struct {
	Name   string
	Values []string
}

// Enums returns the enum types the model depends on.
func Enums() []Enum {
	return []Enum{
		{Name: "role", Values: []string{"user", "provider"}},
		{Name: "location_type", Values: []string{"point", "polygon", "multipolygon"}},
	}
}

const (
	uuidPK      = "gen_random_uuid()"
	nowDefault  = "now()"
	timestamp   = "timestamp"
	timestamptz = "timestamp with time zone"
)

func id() Column {
	return Column{Name: "id", Type: "uuid", NotNull: true, Default: uuidPK}
}

func createdAt() Column {
	return Column{Name: "created_at", Type: timestamp, NotNull: true, Default: nowDefault}
}

// updated_at is nullable and maintained by the set_updated_at trigger,
// never written by application code.
func updatedAt() Column {
	return Column{Name: "updated_at", Type: timestamptz}
}

// Tables returns every table of the model, dependency-free order not
// required: foreign keys are added in a separate pass after creation.
func Tables() []Table {
	return []Table{
		// Identity tables. Their ids are opaque tokens issued by the auth
		// layer, hence text primary keys instead of uuid defaults.
		{
			Name: "user",
			Columns: []Column{
				{Name: "id", Type: "text", NotNull: true},
				{Name: "name", Type: "text", NotNull: true},
				{Name: "email", Type: "text", NotNull: true, Unique: true},
				{Name: "email_verified", Type: "boolean", NotNull: true, Default: "false"},
				{Name: "image", Type: "text"},
				{Name: "created_at", Type: timestamptz, NotNull: true, Default: nowDefault},
				{Name: "updated_at", Type: timestamptz, NotNull: true, Default: nowDefault},
			},
			PrimaryKey: []string{"id"},
		},
		{
			Name: "session",
			Columns: []Column{
				{Name: "id", Type: "text", NotNull: true},
				{Name: "token", Type: "text", NotNull: true, Unique: true},
				{Name: "user_id", Type: "text", NotNull: true},
				{Name: "expires_at", Type: timestamptz, NotNull: true},
				{Name: "ip_address", Type: "text"},
				{Name: "user_agent", Type: "text"},
				{Name: "created_at", Type: timestamptz, NotNull: true, Default: nowDefault},
				{Name: "updated_at", Type: timestamptz, NotNull: true, Default: nowDefault},
			},
			PrimaryKey: []string{"id"},
		},
		{
			Name: "account",
			Columns: []Column{
				{Name: "id", Type: "text", NotNull: true},
				{Name: "account_id", Type: "text", NotNull: true},
				{Name: "provider_id", Type: "text", NotNull: true},
				{Name: "user_id", Type: "text", NotNull: true},
				{Name: "access_token", Type: "text"},
				{Name: "refresh_token", Type: "text"},
				{Name: "id_token", Type: "text"},
				{Name: "access_token_expires_at", Type: timestamptz},
				{Name: "refresh_token_expires_at", Type: timestamptz},
				{Name: "scope", Type: "text"},
				{Name: "password", Type: "text"},
				{Name: "created_at", Type: timestamptz, NotNull: true, Default: nowDefault},
				{Name: "updated_at", Type: timestamptz, NotNull: true, Default: nowDefault},
			},
			PrimaryKey: []string{"id"},
		},
		{
			Name: "verification",
			Columns: []Column{
				{Name: "id", Type: "text", NotNull: true},
				{Name: "identifier", Type: "text", NotNull: true},
				{Name: "value", Type: "text", NotNull: true},
				{Name: "expires_at", Type: timestamptz, NotNull: true},
				{Name: "created_at", Type: timestamptz, NotNull: true, Default: nowDefault},
				{Name: "updated_at", Type: timestamptz, NotNull: true, Default: nowDefault},
			},
			PrimaryKey: []string{"id"},
		},

		// Application tables.
		{
			Name: "user_metadata",
			Columns: []Column{
				id(),
				{Name: "user_id", Type: "text", NotNull: true, Unique: true},
				{Name: "roles", Type: "role[]", NotNull: true, Default: "'{user}'::role[]"},
				{Name: "locale", Type: "text"},
				updatedAt(),
			},
			PrimaryKey: []string{"id"},
			Indexes: []Index{
				{Name: "user_roles_idx", Columns: []string{"roles"}},
				{Name: "locale_idx", Columns: []string{"locale"}},
			},
		},
		{
			Name: "customer",
			Columns: []Column{
				id(),
				{Name: "user_id", Type: "text", NotNull: true},
				{Name: "first_name", Type: "text"},
				{Name: "last_name", Type: "text"},
				{Name: "phone", Type: "text"},
				{Name: "locale", Type: "text"},
				createdAt(),
				updatedAt(),
			},
			PrimaryKey: []string{"id"},
		},
		{
			Name: "service_provider",
			Columns: []Column{
				id(),
				{Name: "user_id", Type: "text", NotNull: true, Unique: true},
				// TODO: add phone number validation and a unique constraint
				{Name: "phone_number", Type: "text"},
				{Name: "first_name", Type: "text"},
				{Name: "last_name", Type: "text"},
				{Name: "bio", Type: "text"},
				createdAt(),
				updatedAt(),
			},
			PrimaryKey: []string{"id"},
		},
		{
			Name: "service",
			Columns: []Column{
				id(),
				{Name: "provider_id", Type: "uuid", NotNull: true},
				{Name: "image_id", Type: "uuid"},
				createdAt(),
				updatedAt(),
			},
			PrimaryKey: []string{"id"},
		},
		{
			Name: "post",
			Columns: []Column{
				id(),
				{Name: "title", Type: "varchar(256)", NotNull: true},
				{Name: "content", Type: "text", NotNull: true},
				{Name: "service_id", Type: "uuid"},
				createdAt(),
				updatedAt(),
			},
			PrimaryKey: []string{"id"},
		},
		{
			// post_id/service_id are deliberately plain columns without
			// foreign keys; see the relation list.
			Name: "media",
			Columns: []Column{
				id(),
				{Name: "url", Type: "text"},
				{Name: "post_id", Type: "uuid"},
				{Name: "service_id", Type: "uuid"},
				createdAt(),
				updatedAt(),
			},
			PrimaryKey: []string{"id"},
		},
		{
			Name: "category",
			Columns: []Column{
				id(),
				{Name: "title", Type: "text"},
				createdAt(),
				updatedAt(),
			},
			PrimaryKey: []string{"id"},
		},
		{
			Name: "service_to_categories",
			Columns: []Column{
				{Name: "service_id", Type: "uuid", NotNull: true},
				{Name: "category_id", Type: "uuid", NotNull: true},
			},
			PrimaryKey: []string{"service_id", "category_id"},
		},
		{
			Name: "address",
			Columns: []Column{
				id(),
				{Name: "title", Type: "text"},
				{Name: "user_id", Type: "text", NotNull: true},
				{Name: "location_id", Type: "uuid", NotNull: true},
				createdAt(),
				updatedAt(),
			},
			PrimaryKey: []string{"id"},
			Indexes: []Index{
				{Name: "address_title_idx", Columns: []string{"title"}},
			},
		},
		{
			Name: "location",
			Columns: []Column{
				id(),
				{Name: "name", Type: "text"},
				{Name: "full_address", Type: "text"},
				{Name: "house", Type: "text"},
				{Name: "street", Type: "text"},
				{Name: "district", Type: "text"},
				{Name: "city", Type: "text"},
				{Name: "region", Type: "text"},
				{Name: "country", Type: "text"},
				{Name: "type", Type: "location_type", NotNull: true},
				// SRID 4326 = WGS84.
				{Name: "geom", Type: "geometry(Geometry,4326)"},
				createdAt(),
				updatedAt(),
			},
			PrimaryKey: []string{"id"},
			Checks: []Check{
				{
					Name: "location_geo_type_check",
					Expr: "(type = 'point' AND GeometryType(geom) = 'POINT') OR " +
						"(type = 'polygon' AND GeometryType(geom) = 'POLYGON') OR " +
						"(type = 'multipolygon' AND GeometryType(geom) = 'MULTIPOLYGON')",
				},
			},
			Indexes: []Index{
				{Name: "geo_idx", Columns: []string{"geom"}, Using: "gist"},
				{Name: "location_name_idx", Columns: []string{"name"}},
				{Name: "location_full_address_idx", Columns: []string{"full_address"}},
			},
		},
	}
}

// TableByName returns the named table descriptor, or nil when unknown.
func TableByName(name string) *Table {
	for _, t := range Tables() {
		if t.Name == name {
			tbl := t
			return &tbl
		}
	}
	return nil
}

func (t *Table) column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}
