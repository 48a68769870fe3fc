package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Identidad-api/internal/domain"
)

// DB abstrae *pgxpool.Pool y pgx.Tx para que los repositorios funcionen igual
// dentro y fuera de una transacción.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isDuplicateObject verifica si el error es "ya existe" de un paso estructural:
// 42701 duplicate_column, 42P07 duplicate_table/index. El migrador lo trata
// como éxito, no como fallo.
func isDuplicateObject(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "42701" || pgErr.Code == "42P07")
}

// classify distingue errores lógicos de SQL (se envuelven tal cual) de fallos
// de transporte/conexión, que se marcan como domain.ErrStoreUnavailable para
// que el caller sepa que puede reintentar.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w (%v)", op, domain.ErrStoreUnavailable, err)
}
