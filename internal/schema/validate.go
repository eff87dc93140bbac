package schema

import "fmt"

// Validate cross-checks the hand-written descriptors: primary-key and
// index columns must exist on their table, relation endpoints must name
// declared tables and columns, many-to-many relations must route through
// a declared join table, and names must not collide. It runs in tests and
// before migration so a descriptor typo fails loudly instead of producing
// a half-formed schema.
func Validate() error {
	tables := make(map[string]*Table)
	for _, t := range Tables() {
		if _, dup := tables[t.Name]; dup {
			return fmt.Errorf("duplicate table %q", t.Name)
		}
		tbl := t
		tables[t.Name] = &tbl
	}

	seenIndexes := make(map[string]string)
	for name, t := range tables {
		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if cols[c.Name] {
				return fmt.Errorf("table %q: duplicate column %q", name, c.Name)
			}
			cols[c.Name] = true
		}
		if len(t.PrimaryKey) == 0 {
			return fmt.Errorf("table %q: no primary key", name)
		}
		for _, pk := range t.PrimaryKey {
			if !cols[pk] {
				return fmt.Errorf("table %q: primary key column %q not declared", name, pk)
			}
		}
		for _, idx := range t.Indexes {
			if prev, dup := seenIndexes[idx.Name]; dup {
				return fmt.Errorf("index %q declared on both %q and %q", idx.Name, prev, name)
			}
			seenIndexes[idx.Name] = name
			for _, col := range idx.Columns {
				if !cols[col] {
					return fmt.Errorf("index %q: column %q not declared on %q", idx.Name, col, name)
				}
			}
		}
	}

	seenRelations := make(map[string]bool)
	for _, r := range Relations() {
		if seenRelations[r.Name] {
			return fmt.Errorf("duplicate relation %q", r.Name)
		}
		seenRelations[r.Name] = true

		owner, ok := tables[r.Table]
		if !ok {
			return fmt.Errorf("relation %q: unknown table %q", r.Name, r.Table)
		}
		ref, ok := tables[r.RefTable]
		if !ok {
			return fmt.Errorf("relation %q: unknown referenced table %q", r.Name, r.RefTable)
		}

		if r.Cardinality == ManyToMany {
			if r.Through == "" {
				return fmt.Errorf("relation %q: many-to-many requires a join table", r.Name)
			}
			if _, ok := tables[r.Through]; !ok {
				return fmt.Errorf("relation %q: unknown join table %q", r.Name, r.Through)
			}
			if r.Enforced {
				return fmt.Errorf("relation %q: many-to-many is enforced via its join table edges", r.Name)
			}
			continue
		}

		if owner.column(r.Column) == nil {
			return fmt.Errorf("relation %q: column %q not declared on %q", r.Name, r.Column, r.Table)
		}
		if ref.column(r.RefColumn) == nil {
			return fmt.Errorf("relation %q: column %q not declared on %q", r.Name, r.RefColumn, r.RefTable)
		}
	}

	return nil
}
