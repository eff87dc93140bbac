package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Migrate applies the model DDL over a direct (non-pooled) connection.
// Transaction-mode poolers reject some DDL forms, so callers must pass a
// connection to the non-pooling endpoint. Every statement is idempotent;
// running Migrate on each startup converges to the declared schema.
func Migrate(ctx context.Context, conn *pgx.Conn) error {
	if err := Validate(); err != nil {
		return fmt.Errorf("invalid schema descriptors: %w", err)
	}

	stmts := Statements()
	for i, stmt := range stmts {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d/%d: %w", i+1, len(stmts), err)
		}
	}

	log.Info().Int("statements", len(stmts)).Msg("Schema migration applied")
	return nil
}
