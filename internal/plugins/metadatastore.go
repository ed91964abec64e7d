package plugins

import (
	"context"
	"database/sql"
	"regexp"

	_ "github.com/go-sql-driver/mysql"

	"ckv/internal/ckverrors"
	"ckv/internal/configurable"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
	"ckv/internal/registry"
)

// validTableName matches a bare MySQL identifier: table_name arrives
// through the same config grammar as every other option, so it must be
// validated before it is concatenated into a statement rather than passed
// as a bound parameter (MySQL's protocol has no placeholder for
// identifiers).
var validTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MetadataStoreTypeTag is the registry.Registry type tag MetadataStore
// descriptors resolve against. Not part of the original embedded-store
// option surface; stands in for "storage providers" (spec §4 expansion
// "Pluggable subsystems") and gives the engine one concrete instance of
// "callers persist the output of GetOptionString" (spec §6).
const MetadataStoreTypeTag = "MetadataStore"

// RegisterMetadataStores adds the "memory" and "mysql" MetadataStore
// factories to reg under MetadataStoreTypeTag.
func RegisterMetadataStores(reg *registry.Registry) {
	reg.Register(MetadataStoreTypeTag, "memory", newMemoryStore)
	reg.Register(MetadataStoreTypeTag, "mysql", newMySQLStore)
}

// Snapshot is the narrow persistence surface a MetadataStore exposes
// beyond the ConfigurableObject protocol: save/load one serialized
// options blob keyed by name.
type Snapshot interface {
	Save(ctx context.Context, key, optionString string) error
	Load(ctx context.Context, key string) (string, bool, error)
}

type memoryStoreOpts struct{}

var memoryStoreOptsTable = descriptor.NewTable()

// memoryStore is the default "memory" MetadataStore: an in-process map,
// useful for tests and as the zero-configuration default.
type memoryStore struct {
	*configurable.Configurable
	blobs map[string]string
}

func newMemoryStore(ctx ctxopt.Context) (descriptor.ConfigurableObject, error) {
	cfg := configurable.New("memory").AddGroup("metadata_store", &memoryStoreOpts{}, memoryStoreOptsTable)
	return &memoryStore{Configurable: cfg, blobs: make(map[string]string)}, nil
}

func (m *memoryStore) Save(ctx context.Context, key, optionString string) error {
	m.blobs[key] = optionString
	return nil
}

func (m *memoryStore) Load(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.blobs[key]
	return v, ok, nil
}

type mysqlStoreOpts struct {
	DSN       string
	TableName string
}

var mysqlStoreOptsTable = func() *descriptor.Table {
	t := descriptor.NewTable()
	dsnGet, dsnSet := descriptor.Field[mysqlStoreOpts, string](func(o *mysqlStoreOpts) *string { return &o.DSN })
	t.Add("dsn", &descriptor.Descriptor{Tag: descriptor.String, Get: dsnGet, Set: dsnSet, Flags: descriptor.StringNone})
	nameGet, nameSet := descriptor.Field[mysqlStoreOpts, string](func(o *mysqlStoreOpts) *string { return &o.TableName })
	t.Add("table_name", &descriptor.Descriptor{Tag: descriptor.String, Get: nameGet, Set: nameSet})
	return t
}()

// mysqlStore is the "mysql" MetadataStore: opens a DSN with
// go-sql-driver/mysql at Prepare time, creating the one-row-per-key blob
// table on demand, grounded on the teacher's Applier.Connect (sql.Open +
// PingContext, wrapped as a *ckverrors.Status IOError on failure).
type mysqlStore struct {
	*configurable.Configurable
	opts *mysqlStoreOpts
	db   *sql.DB
}

func newMySQLStore(ctx ctxopt.Context) (descriptor.ConfigurableObject, error) {
	opts := &mysqlStoreOpts{TableName: "ckv_options_blob"}
	cfg := configurable.New("mysql").AddGroup("metadata_store", opts, mysqlStoreOptsTable)
	return &mysqlStore{Configurable: cfg, opts: opts}, nil
}

func (m *mysqlStore) PrepareOptions(ctx ctxopt.Context) error {
	if err := m.Configurable.PrepareOptions(ctx); err != nil {
		return err
	}
	if m.opts.DSN == "" {
		return ckverrors.InvalidArg("mysql MetadataStore: dsn must not be empty")
	}
	if !validTableName.MatchString(m.opts.TableName) {
		return ckverrors.InvalidArg("mysql MetadataStore: table_name %q is not a valid identifier", m.opts.TableName)
	}
	db, err := sql.Open("mysql", m.opts.DSN)
	if err != nil {
		return ckverrors.IOErrorf(err, "mysql MetadataStore: open %q", m.opts.TableName)
	}
	if pingErr := db.PingContext(context.Background()); pingErr != nil {
		_ = db.Close()
		return ckverrors.IOErrorf(pingErr, "mysql MetadataStore: ping")
	}
	createStmt := "CREATE TABLE IF NOT EXISTS " + m.opts.TableName +
		" (`key` VARCHAR(255) PRIMARY KEY, options_blob LONGTEXT NOT NULL)"
	if _, err := db.ExecContext(context.Background(), createStmt); err != nil {
		_ = db.Close()
		return ckverrors.IOErrorf(err, "mysql MetadataStore: create table %q", m.opts.TableName)
	}
	m.db = db
	ctx.Logger().Infow("mysql metadata store prepared", "table", m.opts.TableName)
	return nil
}

func (m *mysqlStore) ValidateOptions(ctx ctxopt.Context) error {
	if err := m.Configurable.ValidateOptions(ctx); err != nil {
		return err
	}
	if m.db == nil {
		return ckverrors.NotSupportedf("mysql MetadataStore: not prepared")
	}
	return nil
}

func (m *mysqlStore) Save(ctx context.Context, key, optionString string) error {
	if m.db == nil {
		return ckverrors.NotSupportedf("mysql MetadataStore: not prepared")
	}
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO "+m.opts.TableName+" (`key`, options_blob) VALUES (?, ?) "+
			"ON DUPLICATE KEY UPDATE options_blob = VALUES(options_blob)",
		key, optionString)
	if err != nil {
		return ckverrors.IOErrorf(err, "mysql MetadataStore: save %q", key)
	}
	return nil
}

func (m *mysqlStore) Load(ctx context.Context, key string) (string, bool, error) {
	if m.db == nil {
		return "", false, ckverrors.NotSupportedf("mysql MetadataStore: not prepared")
	}
	row := m.db.QueryRowContext(ctx, "SELECT options_blob FROM "+m.opts.TableName+" WHERE `key` = ?", key)
	var blob string
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, ckverrors.IOErrorf(err, "mysql MetadataStore: load %q", key)
	}
	return blob, true, nil
}

// Close releases the underlying *sql.DB, if one was opened.
func (m *mysqlStore) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
