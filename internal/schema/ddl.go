package schema

import (
	"fmt"
	"strings"
)

// DDL generation. Statements are idempotent so the migration can run on
// every startup: tables and indexes use IF NOT EXISTS, enums and
// constraints are guarded by catalog lookups. Identifiers are always
// quoted ("user" is a reserved word).

func quote(ident string) string {
	return `"` + ident + `"`
}

func quoteAll(idents []string) []string {
	out := make([]string, len(idents))
	for i, s := range idents {
		out[i] = quote(s)
	}
	return out
}

// EnumSQL returns the guarded CREATE TYPE statement for an enum.
// CREATE TYPE has no IF NOT EXISTS form, hence the DO block.
func EnumSQL(e Enum) string {
	values := make([]string, len(e.Values))
	for i, v := range e.Values {
		values[i] = "'" + v + "'"
	}
	return fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = '%s') THEN
    CREATE TYPE %s AS ENUM (%s);
  END IF;
END $$;`, e.Name, quote(e.Name), strings.Join(values, ", "))
}

// ColumnSQL renders one column definition.
func ColumnSQL(c Column) string {
	var b strings.Builder
	b.WriteString(quote(c.Name))
	b.WriteString(" ")
	b.WriteString(c.Type)
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	return b.String()
}

// CreateTableSQL renders the CREATE TABLE statement for a table,
// including its primary key and check constraints. Foreign keys are added
// separately so table order does not matter.
func CreateTableSQL(t Table) string {
	var defs []string
	for _, c := range t.Columns {
		defs = append(defs, "  "+ColumnSQL(c))
	}
	if len(t.PrimaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("  PRIMARY KEY (%s)", strings.Join(quoteAll(t.PrimaryKey), ", ")))
	}
	for _, ch := range t.Checks {
		defs = append(defs, fmt.Sprintf("  CONSTRAINT %s CHECK (%s)", quote(ch.Name), ch.Expr))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", quote(t.Name), strings.Join(defs, ",\n"))
}

// ForeignKeySQL renders the guarded ALTER TABLE statement adding one
// foreign-key constraint. The constraint name doubles as the relation
// name, which keeps pg_constraint readable.
func ForeignKeySQL(r Relation) string {
	action := r.OnDelete
	if action == "" {
		action = NoAction
	}
	constraint := r.Name + "_fkey"
	return fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
    ALTER TABLE %s ADD CONSTRAINT %s
      FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s;
  END IF;
END $$;`, constraint, quote(r.Table), quote(constraint), quote(r.Column), quote(r.RefTable), quote(r.RefColumn), action)
}

// IndexSQL renders one CREATE INDEX statement.
func IndexSQL(table string, idx Index) string {
	using := ""
	if idx.Using != "" {
		using = " USING " + idx.Using
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s%s (%s);",
		quote(idx.Name), quote(table), using, strings.Join(quoteAll(idx.Columns), ", "))
}

// UpdatedAtFunctionSQL installs the trigger function that maintains
// updated_at on every UPDATE. Application code never writes the column.
func UpdatedAtFunctionSQL() string {
	return `CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN
  NEW.updated_at := now();
  RETURN NEW;
END;
$$ LANGUAGE plpgsql;`
}

// UpdatedAtTriggerSQL attaches the set_updated_at trigger to one table.
func UpdatedAtTriggerSQL(table string) string {
	trigger := table + "_set_updated_at"
	return fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s;
CREATE TRIGGER %s BEFORE UPDATE ON %s
  FOR EACH ROW EXECUTE FUNCTION set_updated_at();`,
		quote(trigger), quote(table), quote(trigger), quote(table))
}

// Statements returns the full ordered DDL for the model: extension,
// enums, tables, foreign keys, indexes, then the updated_at machinery.
func Statements() []string {
	stmts := []string{"CREATE EXTENSION IF NOT EXISTS postgis;"}

	for _, e := range Enums() {
		stmts = append(stmts, EnumSQL(e))
	}
	tables := Tables()
	for _, t := range tables {
		stmts = append(stmts, CreateTableSQL(t))
	}
	for _, r := range ForeignKeys() {
		stmts = append(stmts, ForeignKeySQL(r))
	}
	for _, t := range tables {
		for _, idx := range t.Indexes {
			stmts = append(stmts, IndexSQL(t.Name, idx))
		}
	}

	stmts = append(stmts, UpdatedAtFunctionSQL())
	for _, t := range tables {
		if t.column("updated_at") != nil {
			stmts = append(stmts, UpdatedAtTriggerSQL(t.Name))
		}
	}
	return stmts
}
