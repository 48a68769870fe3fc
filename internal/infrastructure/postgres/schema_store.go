package postgres

import (
	"context"
	"fmt"
)

// DDLResult resultado de un paso estructural. "Ya existe" es un resultado
// distinguible y exitoso, nunca un error: así un paso repetido no aborta la
// secuencia de migración.
type DDLResult int

const (
	DDLApplied DDLResult = iota
	DDLAlreadyExists
)

// SchemaStore operaciones estructurales y de reparación que necesita el
// Migrator. Separado en interfaz para poder verificar la idempotencia de la
// secuencia sin una base de datos viva.
type SchemaStore interface {
	EnsureTable(ctx context.Context, name, ddl string) (DDLResult, error)
	AddColumn(ctx context.Context, table, column, ddl string) (DDLResult, error)
	EnsureIndex(ctx context.Context, name, ddl string) (DDLResult, error)
	ColumnExists(ctx context.Context, table, column string) (bool, error)
	// Repair ejecuta una sentencia de reparación de valores y devuelve las
	// filas afectadas.
	Repair(ctx context.Context, sql string, args ...any) (int64, error)
}

var _ SchemaStore = (*PgSchemaStore)(nil)

// PgSchemaStore SchemaStore sobre PostgreSQL. El estado de la migración se
// deriva re-sondeando information_schema y pg_indexes, no de un ledger de
// versiones: el almacén histórico tiene deriva de esquema previa a cualquier
// ledger que pudiéramos haber llevado.
type PgSchemaStore struct {
	db DB
}

// NewPgSchemaStore construye el adaptador de esquema.
func NewPgSchemaStore(db DB) *PgSchemaStore {
	return &PgSchemaStore{db: db}
}

// EnsureTable crea la tabla si no existe.
func (s *PgSchemaStore) EnsureTable(ctx context.Context, name, ddl string) (DDLResult, error) {
	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return 0, err
	}
	if exists {
		return DDLAlreadyExists, nil
	}
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		// Carrera benigna: otro proceso la creó entre el sondeo y el CREATE.
		if isDuplicateObject(err) {
			return DDLAlreadyExists, nil
		}
		return 0, classify("create table "+name, err)
	}
	return DDLApplied, nil
}

// AddColumn agrega la columna si no existe. ddl es la definición completa
// ("login_method TEXT DEFAULT 'password'").
func (s *PgSchemaStore) AddColumn(ctx context.Context, table, column, ddl string) (DDLResult, error) {
	exists, err := s.ColumnExists(ctx, table, column)
	if err != nil {
		return 0, err
	}
	if exists {
		return DDLAlreadyExists, nil
	}
	if _, err := s.db.Exec(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, ddl)); err != nil {
		if isDuplicateObject(err) {
			return DDLAlreadyExists, nil
		}
		return 0, classify(fmt.Sprintf("add column %s.%s", table, column), err)
	}
	return DDLApplied, nil
}

// EnsureIndex crea el índice si no existe: sondeo previo en pg_indexes más
// tolerancia a objeto duplicado si otro proceso lo creó en medio.
func (s *PgSchemaStore) EnsureIndex(ctx context.Context, name, ddl string) (DDLResult, error) {
	exists, err := s.indexExists(ctx, name)
	if err != nil {
		return 0, err
	}
	if exists {
		return DDLAlreadyExists, nil
	}
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		if isDuplicateObject(err) {
			return DDLAlreadyExists, nil
		}
		return 0, classify("create index "+name, err)
	}
	return DDLApplied, nil
}

// ColumnExists sondea information_schema por la columna.
func (s *PgSchemaStore) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2
		)`
	var exists bool
	if err := s.db.QueryRow(ctx, query, table, column).Scan(&exists); err != nil {
		return false, classify(fmt.Sprintf("probe column %s.%s", table, column), err)
	}
	return exists, nil
}

// Repair ejecuta una sentencia de reparación de datos.
func (s *PgSchemaStore) Repair(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, classify("repair", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PgSchemaStore) tableExists(ctx context.Context, name string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`
	var exists bool
	if err := s.db.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, classify("probe table "+name, err)
	}
	return exists, nil
}

func (s *PgSchemaStore) indexExists(ctx context.Context, name string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = current_schema() AND indexname = $1
		)`
	var exists bool
	if err := s.db.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, classify("probe index "+name, err)
	}
	return exists, nil
}
