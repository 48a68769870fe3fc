package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/pkg/logger"
)

// zeroSentinelCutoff cualquier timestamp en o bajo el año 1 se trata como el
// centinela "fecha cero" que dejaron scripts históricos, equivalente a NULL.
var zeroSentinelCutoff = time.Date(1, time.January, 2, 0, 0, 0, 0, time.UTC)

// Migrator evoluciona la estructura del almacén de usuarios de forma aditiva y
// repara valores históricos inválidos. Toda la secuencia es re-ejecutable:
// correrla sobre un almacén ya migrado no cambia estructura ni datos.
//
// Debe correr como un único paso exclusivo antes de servir tráfico (orden de
// despliegue o advisory lock externo); dos migradores concurrentes compitiendo
// en los sondeos "¿ya existe la columna?" es un caso límite documentado, no
// soportado.
type Migrator struct {
	store SchemaStore
	log   *logger.Logger
	now   func() time.Time
}

// NewMigrator construye el migrador.
func NewMigrator(store SchemaStore, log *logger.Logger) *Migrator {
	return &Migrator{store: store, log: log, now: time.Now}
}

// columnStep una columna esperada con su DDL de alta idempotente.
type columnStep struct {
	table  string
	column string
	ddl    string
}

// expectedColumns todas las columnas que el esquema convergido necesita.
// Consolida los "si no existe la columna, agrégala" que antes vivían
// repetidos en scripts sueltos. Las columnas se agregan nullable (o con
// DEFAULT) para poder aplicarse sobre tablas ya pobladas; el backfill repara
// los valores después.
var expectedColumns = []columnStep{
	{"users", "display_name", "display_name TEXT"},
	{"users", "role", "role TEXT DEFAULT 'standard'"},
	{"users", "is_active", "is_active BOOLEAN DEFAULT TRUE"},
	{"users", "password_hash", "password_hash TEXT"},
	{"users", "login_method", "login_method TEXT DEFAULT 'password'"},
	{"users", "facial_descriptor", "facial_descriptor TEXT"},
	{"users", "facial_registered_at", "facial_registered_at TIMESTAMPTZ"},
	{"users", "facial_metadata", "facial_metadata TEXT"},
	{"users", "last_login", "last_login TIMESTAMPTZ"},
	{"users", "created_at", "created_at TIMESTAMPTZ"},
	{"users", "updated_at", "updated_at TIMESTAMPTZ"},
}

const usersTableDDL = `
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		display_name TEXT,
		role TEXT DEFAULT 'standard',
		is_active BOOLEAN DEFAULT TRUE,
		password_hash TEXT,
		login_method TEXT DEFAULT 'password',
		facial_descriptor TEXT,
		facial_registered_at TIMESTAMPTZ,
		facial_metadata TEXT,
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	)`

const resetTokensTableDDL = `
	CREATE TABLE reset_tokens (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		consumed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`

const emailIndexDDL = `CREATE UNIQUE INDEX idx_users_email_lower ON users (lower(email))`

// Run aplica la migración completa: tablas y columnas primero (el backfill
// puede apuntar a columnas recién agregadas), luego reparación de valores,
// después el índice único de email (los emails deben estar ya normalizados y
// deduplicables, o el CREATE INDEX fallaría sobre datos legacy), y al final
// verifica re-leyendo la estructura que toda columna esperada exista.
func (m *Migrator) Run(ctx context.Context) error {
	if err := m.applyStructural(ctx); err != nil {
		return err
	}
	if err := m.backfill(ctx); err != nil {
		// El conteo de filas afectadas hasta el punto de fallo queda
		// desconocido; re-ejecutar es seguro por idempotencia.
		return fmt.Errorf("backfill: %w", err)
	}
	if err := m.ensureEmailIndex(ctx); err != nil {
		return err
	}
	return m.verify(ctx)
}

// applyStructural tablas y columnas. Un "ya existe" es éxito y no interrumpe
// los pasos restantes; cualquier otro error estructural aborta y sale con el
// error original.
func (m *Migrator) applyStructural(ctx context.Context) error {
	tables := []struct{ name, ddl string }{
		{"users", usersTableDDL},
		{"reset_tokens", resetTokensTableDDL},
	}
	for _, t := range tables {
		res, err := m.store.EnsureTable(ctx, t.name, t.ddl)
		if err != nil {
			return err
		}
		m.logStep("tabla "+t.name, res)
	}
	for _, c := range expectedColumns {
		res, err := m.store.AddColumn(ctx, c.table, c.column, c.ddl)
		if err != nil {
			return err
		}
		m.logStep(fmt.Sprintf("columna %s.%s", c.table, c.column), res)
	}
	return nil
}

// ensureEmailIndex crea el índice único sobre lower(email). Corre después del
// backfill: la reparación de emails sin normalizar tiene que aplicarse antes
// de imponer unicidad sobre la forma en minúsculas.
func (m *Migrator) ensureEmailIndex(ctx context.Context) error {
	res, err := m.store.EnsureIndex(ctx, "idx_users_email_lower", emailIndexDDL)
	if err != nil {
		return err
	}
	m.logStep("índice idx_users_email_lower", res)
	return nil
}

// backfill convergencia del esquema legacy y reparación de defaults. Cada
// sentencia solo toca filas defectuosas, así que re-ejecutar sobre un almacén
// sano afecta cero filas.
func (m *Migrator) backfill(ctx context.Context) error {
	if err := m.convergeLegacy(ctx); err != nil {
		return err
	}
	now := m.now()
	repairs := []struct {
		name string
		sql  string
		args []any
	}{
		// El email es la clave de búsqueda: toda lectura llega ya normalizada
		// (trim + minúsculas), así que las filas históricas con otra forma
		// quedarían inalcanzables sin esta reparación.
		{"emails sin normalizar", `UPDATE users SET email = lower(btrim(email)) WHERE email <> lower(btrim(email))`, nil},
		{"is_active nulos", `UPDATE users SET is_active = TRUE WHERE is_active IS NULL`, nil},
		{"role nulos", `UPDATE users SET role = 'standard' WHERE role IS NULL OR role = ''`, nil},
		{"login_method nulos", `UPDATE users SET login_method = 'password' WHERE login_method IS NULL OR login_method = ''`, nil},
		{"created_at nulos o centinela", `UPDATE users SET created_at = $1 WHERE created_at IS NULL OR created_at <= $2`, []any{now, zeroSentinelCutoff}},
		{"updated_at nulos o centinela", `UPDATE users SET updated_at = $1 WHERE updated_at IS NULL OR updated_at <= $2`, []any{now, zeroSentinelCutoff}},
		// Invariante updated_at >= created_at, también para filas históricas.
		{"updated_at menor a created_at", `UPDATE users SET updated_at = created_at WHERE updated_at < created_at`, nil},
	}
	for _, rep := range repairs {
		n, err := m.store.Repair(ctx, rep.sql, rep.args...)
		if err != nil {
			return fmt.Errorf("%s: %w", rep.name, err)
		}
		if n > 0 {
			m.log.Info().Int64("filas", n).Str("paso", rep.name).Msg("backfill aplicado")
		}
	}
	return nil
}

// convergeLegacy copia los valores del esquema histórico en español
// (nombre/rol/activo) a las columnas convergidas cuando esas columnas legacy
// todavía existen. Entrada de migración de una sola vez: las columnas legacy
// se dejan en su lugar (contrato solo-aditivo, sin DROP).
func (m *Migrator) convergeLegacy(ctx context.Context) error {
	legacy := []struct {
		column string
		sql    string
	}{
		{"nombre", `UPDATE users SET display_name = nombre WHERE display_name IS NULL AND nombre IS NOT NULL`},
		{"rol", `UPDATE users SET role = CASE WHEN lower(rol) IN ('admin', 'administrador') THEN 'admin' ELSE 'standard' END
			WHERE (role IS NULL OR role = '') AND rol IS NOT NULL`},
		{"activo", `UPDATE users SET is_active = activo WHERE is_active IS NULL AND activo IS NOT NULL`},
	}
	for _, l := range legacy {
		exists, err := m.store.ColumnExists(ctx, "users", l.column)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		n, err := m.store.Repair(ctx, l.sql)
		if err != nil {
			return fmt.Errorf("converger columna legacy %s: %w", l.column, err)
		}
		if n > 0 {
			m.log.Info().Int64("filas", n).Str("columna", l.column).Msg("esquema legacy convergido")
		}
	}
	return nil
}

// verify re-lee la estructura y confirma que toda columna esperada esté
// presente. Si falta alguna, reporta fallo parcial en vez de éxito silencioso.
func (m *Migrator) verify(ctx context.Context) error {
	var missing []string
	for _, c := range expectedColumns {
		exists, err := m.store.ColumnExists(ctx, c.table, c.column)
		if err != nil {
			return err
		}
		if !exists {
			missing = append(missing, c.table+"."+c.column)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMigrationPartial, strings.Join(missing, ", "))
	}
	m.log.Info().Msg("migración verificada: estructura completa")
	return nil
}

func (m *Migrator) logStep(name string, res DDLResult) {
	if res == DDLAlreadyExists {
		m.log.Debug().Str("paso", name).Msg("ya existía, sin cambios")
		return
	}
	m.log.Info().Str("paso", name).Msg("cambio estructural aplicado")
}
