package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// SchemaProgressCallback is called during schema creation to report progress
type SchemaProgressCallback func(current int, total int, description string)

// ColumnType is the SQLite storage class of a column
type ColumnType string

const (
	TypeInteger ColumnType = "INTEGER"
	TypeReal    ColumnType = "REAL"
	TypeText    ColumnType = "TEXT"
	TypeBlob    ColumnType = "BLOB"
)

// Column describes one catalog column
type Column struct {
	Name       string
	Type       ColumnType
	NotNull    bool
	PrimaryKey bool
}

// ForeignKey ties a column to the id of a parent table. Rows are removed
// together with their parent.
type ForeignKey struct {
	Column    string
	Reference string
}

// TableSchema describes one catalog table
type TableSchema struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
	// Unique lists column sets that must be unique together
	Unique [][]string
	// Indexes lists single columns to index
	Indexes []string
}

func idColumn() Column {
	return Column{Name: "id", Type: TypeInteger, PrimaryKey: true}
}

func refColumn(name string) Column {
	return Column{Name: name, Type: TypeInteger, NotNull: true}
}

func textColumn(name string) Column {
	return Column{Name: name, Type: TypeText, NotNull: true}
}

func intColumn(name string) Column {
	return Column{Name: name, Type: TypeInteger, NotNull: true}
}

func realColumn(name string) Column {
	return Column{Name: name, Type: TypeReal, NotNull: true}
}

func nullable(c Column) Column {
	c.NotNull = false
	return c
}

// CatalogTables is the archive catalog, parents before children
var CatalogTables = []TableSchema{
	{
		Name: "files",
		Columns: []Column{
			idColumn(),
			textColumn("path"),
			textColumn("hash"),
			textColumn("compression"),
			intColumn("compressed_size"),
			intColumn("size"),
			textColumn("name"),
			textColumn("version"),
		},
		Unique:  [][]string{{"path"}},
		Indexes: []string{"hash"},
	},
	{
		Name: "models",
		Columns: []Column{
			idColumn(),
			refColumn("file_id"),
			textColumn("name"),
			intColumn("idx"),
			intColumn("vertex_count"),
			intColumn("bone_count"),
			intColumn("vertex_buffer_count"),
			intColumn("shape_count"),
			intColumn("material_count"),
		},
		ForeignKeys: []ForeignKey{{Column: "file_id", Reference: "files"}},
		Indexes:     []string{"file_id", "name"},
	},
	{
		Name: "bones",
		Columns: []Column{
			idColumn(),
			refColumn("model_id"),
			textColumn("name"),
			intColumn("idx"),
			nullable(intColumn("parent")),
			intColumn("flags"),
			realColumn("scale_x"), realColumn("scale_y"), realColumn("scale_z"),
			realColumn("rotation_x"), realColumn("rotation_y"), realColumn("rotation_z"), realColumn("rotation_w"),
			realColumn("translation_x"), realColumn("translation_y"), realColumn("translation_z"),
		},
		ForeignKeys: []ForeignKey{{Column: "model_id", Reference: "models"}},
		Indexes:     []string{"model_id"},
	},
	{
		Name: "vertex_buffers",
		Columns: []Column{
			idColumn(),
			refColumn("model_id"),
			intColumn("idx"),
			intColumn("vertex_count"),
			intColumn("attribute_count"),
			intColumn("buffer_count"),
			intColumn("data_size"),
		},
		ForeignKeys: []ForeignKey{{Column: "model_id", Reference: "models"}},
		Indexes:     []string{"model_id"},
	},
	{
		Name: "vertex_attributes",
		Columns: []Column{
			idColumn(),
			refColumn("vertex_buffer_id"),
			textColumn("name"),
			intColumn("buffer_index"),
			intColumn("element_offset"),
			textColumn("format"),
		},
		ForeignKeys: []ForeignKey{{Column: "vertex_buffer_id", Reference: "vertex_buffers"}},
		Indexes:     []string{"vertex_buffer_id"},
	},
	{
		Name: "shapes",
		Columns: []Column{
			idColumn(),
			refColumn("model_id"),
			textColumn("name"),
			intColumn("idx"),
			intColumn("material_index"),
			intColumn("bone_index"),
			intColumn("vertex_buffer_index"),
			intColumn("skin_count"),
			intColumn("lod_count"),
			intColumn("index_count"),
			realColumn("radius"),
		},
		ForeignKeys: []ForeignKey{{Column: "model_id", Reference: "models"}},
		Indexes:     []string{"model_id"},
	},
	{
		Name: "materials",
		Columns: []Column{
			idColumn(),
			refColumn("model_id"),
			textColumn("name"),
			intColumn("idx"),
			nullable(textColumn("shader_archive")),
			nullable(textColumn("shading_model")),
			intColumn("render_param_count"),
			intColumn("param_count"),
		},
		ForeignKeys: []ForeignKey{{Column: "model_id", Reference: "models"}},
		Indexes:     []string{"model_id"},
	},
	{
		Name: "material_textures",
		Columns: []Column{
			idColumn(),
			refColumn("material_id"),
			intColumn("slot"),
			textColumn("texture"),
			nullable(textColumn("sampler")),
		},
		ForeignKeys: []ForeignKey{{Column: "material_id", Reference: "materials"}},
		Indexes:     []string{"material_id", "texture"},
	},
	{
		Name: "textures",
		Columns: []Column{
			idColumn(),
			refColumn("file_id"),
			textColumn("name"),
			intColumn("width"),
			intColumn("height"),
			intColumn("depth"),
			intColumn("mip_count"),
			textColumn("format"),
			textColumn("dim"),
			textColumn("tile_mode"),
			intColumn("data_size"),
			intColumn("mip_data_size"),
		},
		ForeignKeys: []ForeignKey{{Column: "file_id", Reference: "files"}},
		Indexes:     []string{"file_id", "name"},
	},
	{
		Name: "animations",
		Columns: []Column{
			idColumn(),
			refColumn("file_id"),
			textColumn("kind"),
			textColumn("name"),
			nullable(textColumn("path")),
		},
		ForeignKeys: []ForeignKey{{Column: "file_id", Reference: "files"}},
		Indexes:     []string{"file_id"},
	},
	{
		Name: "embedded_files",
		Columns: []Column{
			idColumn(),
			refColumn("file_id"),
			textColumn("name"),
			intColumn("size"),
		},
		ForeignKeys: []ForeignKey{{Column: "file_id", Reference: "files"}},
		Indexes:     []string{"file_id"},
	},
}

// DDLManager handles catalog schema creation
type DDLManager struct {
	db *Database
}

// NewDDLManager creates a new DDL manager
func NewDDLManager(db *Database) *DDLManager {
	return &DDLManager{db: db}
}

// GenerateTableDDL generates CREATE TABLE SQL for a given table schema
func (dm *DDLManager) GenerateTableDDL(table *TableSchema) (string, error) {
	if table == nil {
		return "", fmt.Errorf("table schema cannot be nil")
	}

	if table.Name == "" {
		return "", fmt.Errorf("table name cannot be empty")
	}

	if len(table.Columns) == 0 {
		return "", fmt.Errorf("table %s has no columns", table.Name)
	}

	known := make(map[string]bool, len(table.Columns))
	var columns []string
	for i, column := range table.Columns {
		columnDDL, err := generateColumnDDL(column)
		if err != nil {
			return "", fmt.Errorf("generating column %d of %s: %w", i, table.Name, err)
		}
		known[column.Name] = true
		columns = append(columns, columnDDL)
	}

	for _, fk := range table.ForeignKeys {
		if !known[fk.Column] {
			return "", fmt.Errorf("foreign key on unknown column %s.%s", table.Name, fk.Column)
		}
		if fk.Reference == "" {
			return "", fmt.Errorf("referenced table cannot be empty")
		}
		columns = append(columns, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE CASCADE",
			quoteSQLIdentifier(fk.Column), quoteSQLIdentifier(fk.Reference), quoteSQLIdentifier("id")))
	}

	for _, unique := range table.Unique {
		quoted := make([]string, len(unique))
		for i, name := range unique {
			if !known[name] {
				return "", fmt.Errorf("unique constraint on unknown column %s.%s", table.Name, name)
			}
			quoted[i] = quoteSQLIdentifier(name)
		}
		columns = append(columns, fmt.Sprintf("UNIQUE (%s)", strings.Join(quoted, ", ")))
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
		quoteSQLIdentifier(table.Name),
		strings.Join(columns, ",\n    "))

	return ddl, nil
}

// GenerateIndexDDL generates CREATE INDEX statements for a table's indexed columns
func (dm *DDLManager) GenerateIndexDDL(table *TableSchema) []string {
	var out []string
	for _, column := range table.Indexes {
		out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)",
			quoteSQLIdentifier(fmt.Sprintf("idx_%s_%s", table.Name, column)),
			quoteSQLIdentifier(table.Name),
			quoteSQLIdentifier(column)))
	}
	return out
}

func generateColumnDDL(column Column) (string, error) {
	if column.Name == "" {
		return "", fmt.Errorf("column name cannot be empty")
	}

	switch column.Type {
	case TypeInteger, TypeReal, TypeText, TypeBlob:
	default:
		return "", fmt.Errorf("unsupported column type: %q", column.Type)
	}

	ddl := fmt.Sprintf("%s %s", quoteSQLIdentifier(column.Name), column.Type)
	if column.PrimaryKey {
		ddl += " PRIMARY KEY"
	} else if column.NotNull {
		ddl += " NOT NULL"
	}
	return ddl, nil
}

// DDLRequest represents a request to generate and execute DDL
type DDLRequest struct {
	Type        string // "table" or "index"
	DDL         string
	TableName   string
	Description string
}

// CreateSchemas creates the given tables and their indexes in one transaction
func (dm *DDLManager) CreateSchemas(ctx context.Context, tables []TableSchema, progressCallback SchemaProgressCallback) error {
	if dm.db == nil {
		return fmt.Errorf("database cannot be nil")
	}

	if len(tables) == 0 {
		return nil
	}

	var requests []DDLRequest
	for i := range tables {
		table := &tables[i]
		tableDDL, err := dm.GenerateTableDDL(table)
		if err != nil {
			return fmt.Errorf("generating DDL: %w", err)
		}
		requests = append(requests, DDLRequest{
			Type:        "table",
			DDL:         tableDDL,
			TableName:   table.Name,
			Description: table.Name,
		})
		for _, indexDDL := range dm.GenerateIndexDDL(table) {
			requests = append(requests, DDLRequest{
				Type:        "index",
				DDL:         indexDDL,
				TableName:   table.Name,
				Description: table.Name,
			})
		}
	}

	if err := dm.executeDDLTransaction(ctx, requests, progressCallback, len(tables)); err != nil {
		return fmt.Errorf("executing DDL: %w", err)
	}

	slog.Debug("Created catalog schema", "tables", len(tables), "statements", len(requests))
	return nil
}

// executeDDLTransaction executes DDL statements in a single transaction with
// progress reported once per table
func (dm *DDLManager) executeDDLTransaction(ctx context.Context, ddlRequests []DDLRequest, progressCallback SchemaProgressCallback, totalTables int) error {
	tx, err := dm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	current := 0
	for _, req := range ddlRequests {
		if _, err := tx.ExecContext(ctx, req.DDL); err != nil {
			return fmt.Errorf("executing %s DDL for %s: %w", req.Type, req.TableName, err)
		}

		if req.Type == "table" && progressCallback != nil {
			current++
			progressCallback(current, totalTables, req.Description)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

// quoteSQLIdentifier quotes SQL identifiers to prevent conflicts with reserved words
func quoteSQLIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
