package schema

// Cardinality classifies a relation.
type Cardinality string

const (
	OneToOne   Cardinality = "one-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToMany Cardinality = "many-to-many"
)

// OnDelete is the referential action taken when the referenced row is
// deleted.
type OnDelete string

const (
	NoAction OnDelete = "NO ACTION"
	Cascade  OnDelete = "CASCADE"
)

// Relation declares one edge of the entity graph: the owning table and
// foreign-key column, the referenced table and column, cardinality as seen
// from the referenced side, and the delete rule. Enforced=false records a
// relation that exists in the model but deliberately has no foreign key
// behind it. Many-to-many relations are descriptive: their enforcement
// comes from the join table's own belongs-to edges.
type Relation struct {
	Name        string
	Cardinality Cardinality

	Table     string // owning (child) table
	Column    string // FK column on the owning table
	RefTable  string
	RefColumn string

	OnDelete OnDelete
	Enforced bool

	// Through names the join table of a many-to-many relation.
	Through string
}

// Relations is the hand-listed relation set of the model. Cascade deletes
// are applied only where listed: deleting a user removes its provider
// profile and nothing else.
func Relations() []Relation {
	return []Relation{
		{Name: "session_user", Cardinality: OneToMany, Table: "session", Column: "user_id", RefTable: "user", RefColumn: "id", OnDelete: NoAction, Enforced: true},
		{Name: "account_user", Cardinality: OneToMany, Table: "account", Column: "user_id", RefTable: "user", RefColumn: "id", OnDelete: NoAction, Enforced: true},

		{Name: "user_metadata_user", Cardinality: OneToOne, Table: "user_metadata", Column: "user_id", RefTable: "user", RefColumn: "id", OnDelete: NoAction, Enforced: true},
		{Name: "customer_user", Cardinality: OneToMany, Table: "customer", Column: "user_id", RefTable: "user", RefColumn: "id", OnDelete: NoAction, Enforced: true},
		{Name: "service_provider_user", Cardinality: OneToOne, Table: "service_provider", Column: "user_id", RefTable: "user", RefColumn: "id", OnDelete: Cascade, Enforced: true},

		{Name: "service_provider_profile", Cardinality: OneToMany, Table: "service", Column: "provider_id", RefTable: "service_provider", RefColumn: "id", OnDelete: NoAction, Enforced: true},
		{Name: "service_image", Cardinality: OneToOne, Table: "service", Column: "image_id", RefTable: "media", RefColumn: "id", OnDelete: NoAction, Enforced: true},
		{Name: "post_service", Cardinality: OneToMany, Table: "post", Column: "service_id", RefTable: "service", RefColumn: "id", OnDelete: NoAction, Enforced: true},

		// Media attachments carry loose identifier columns on purpose:
		// rows may reference posts or services that were deleted out of
		// band. The storage engine does not enforce these edges.
		{Name: "media_post", Cardinality: OneToMany, Table: "media", Column: "post_id", RefTable: "post", RefColumn: "id", Enforced: false},
		{Name: "media_service", Cardinality: OneToMany, Table: "media", Column: "service_id", RefTable: "service", RefColumn: "id", Enforced: false},

		{Name: "service_to_categories_service", Cardinality: OneToMany, Table: "service_to_categories", Column: "service_id", RefTable: "service", RefColumn: "id", OnDelete: NoAction, Enforced: true},
		{Name: "service_to_categories_category", Cardinality: OneToMany, Table: "service_to_categories", Column: "category_id", RefTable: "category", RefColumn: "id", OnDelete: NoAction, Enforced: true},
		{Name: "service_categories", Cardinality: ManyToMany, Table: "service", RefTable: "category", Through: "service_to_categories", Enforced: false},

		{Name: "address_user", Cardinality: OneToMany, Table: "address", Column: "user_id", RefTable: "user", RefColumn: "id", OnDelete: NoAction, Enforced: true},
		{Name: "address_location", Cardinality: OneToOne, Table: "address", Column: "location_id", RefTable: "location", RefColumn: "id", OnDelete: NoAction, Enforced: true},
	}
}

// ForeignKeys returns the relations that materialize as foreign-key
// constraints.
func ForeignKeys() []Relation {
	var fks []Relation
	for _, r := range Relations() {
		if r.Enforced && r.Through == "" {
			fks = append(fks, r)
		}
	}
	return fks
}
