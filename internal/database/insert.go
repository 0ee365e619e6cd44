package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jchantrell/fresdb/internal/archive"
	"github.com/jchantrell/fresdb/internal/bfres"
)

// CatalogInserter writes decoded archives into the catalog tables
type CatalogInserter struct {
	db     *Database
	tables []TableSchema
	log    *slog.Logger
}

// NewCatalogInserter creates an inserter over the CatalogTables schema. A nil
// logger means slog.Default().
func NewCatalogInserter(db *Database, logger *slog.Logger) *CatalogInserter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogInserter{
		db:     db,
		tables: CatalogTables,
		log:    logger,
	}
}

// HasFile reports whether an archive with the given content hash is already catalogued
func (ci *CatalogInserter) HasFile(ctx context.Context, hash string) (bool, error) {
	var id int64
	err := ci.db.QueryRow(ctx, `SELECT id FROM "files" WHERE "hash" = ? LIMIT 1`, hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up hash %s: %w", hash, err)
	}
	return true, nil
}

// Hashes returns the content hashes of every catalogued archive
func (ci *CatalogInserter) Hashes(ctx context.Context) (map[string]bool, error) {
	rows, err := ci.db.Query(ctx, `SELECT DISTINCT "hash" FROM "files"`)
	if err != nil {
		return nil, fmt.Errorf("listing hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]bool)
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scanning hash: %w", err)
		}
		hashes[hash] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hashes: %w", err)
	}
	return hashes, nil
}

// InsertArchive writes one archive and everything decoded from it in a single
// transaction, replacing any earlier entry for the same path. It returns the
// number of rows written.
func (ci *CatalogInserter) InsertArchive(ctx context.Context, a *archive.Archive) (int64, error) {
	if a == nil || a.File == nil {
		return 0, fmt.Errorf("archive cannot be nil")
	}

	tx, err := ci.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM "files" WHERE "path" = ?`, a.Path); err != nil {
		return 0, fmt.Errorf("removing previous entry for %s: %w", a.Path, err)
	}

	w, err := ci.prepare(ctx, tx)
	if err != nil {
		return 0, err
	}
	defer w.close()

	if err := w.archive(a); err != nil {
		return 0, fmt.Errorf("inserting %s: %w", a.Path, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	ci.log.Debug("Catalogued archive", "path", a.Path, "rows", w.rows)
	return w.rows, nil
}

// generateInsertSQL creates the INSERT statement for a table, leaving the
// primary key to SQLite
func generateInsertSQL(schema *TableSchema) string {
	var quotedColumns, placeholders []string
	for _, column := range schema.Columns {
		if column.PrimaryKey {
			continue
		}
		quotedColumns = append(quotedColumns, quoteSQLIdentifier(column.Name))
		placeholders = append(placeholders, "?")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteSQLIdentifier(schema.Name),
		strings.Join(quotedColumns, ", "),
		strings.Join(placeholders, ", "))
}

type rowWriter struct {
	ctx   context.Context
	stmts map[string]*sql.Stmt
	rows  int64
}

func (ci *CatalogInserter) prepare(ctx context.Context, tx *sql.Tx) (*rowWriter, error) {
	w := &rowWriter{ctx: ctx, stmts: make(map[string]*sql.Stmt, len(ci.tables))}
	for i := range ci.tables {
		stmt, err := tx.PrepareContext(ctx, generateInsertSQL(&ci.tables[i]))
		if err != nil {
			w.close()
			return nil, fmt.Errorf("preparing insert statement for %s: %w", ci.tables[i].Name, err)
		}
		w.stmts[ci.tables[i].Name] = stmt
	}
	return w, nil
}

func (w *rowWriter) close() {
	for _, stmt := range w.stmts {
		stmt.Close()
	}
}

// insert writes one row in schema column order and returns its id
func (w *rowWriter) insert(table string, values ...any) (int64, error) {
	stmt, ok := w.stmts[table]
	if !ok {
		return 0, fmt.Errorf("no statement for table %s", table)
	}
	result, err := stmt.ExecContext(w.ctx, values...)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", table, err)
	}
	w.rows++
	return result.LastInsertId()
}

func (w *rowWriter) archive(a *archive.Archive) error {
	f := a.File
	fileID, err := w.insert("files",
		a.Path,
		a.HashString(),
		a.Compression.String(),
		a.CompressedSize,
		a.Size,
		f.Name,
		f.Header.Version.String(),
	)
	if err != nil {
		return err
	}

	for i, m := range f.Models.Values() {
		if err := w.model(fileID, i, m); err != nil {
			return fmt.Errorf("model %s: %w", m.Name, err)
		}
	}

	for _, t := range f.Textures.All() {
		if err := w.texture(fileID, t); err != nil {
			return fmt.Errorf("texture %s: %w", t.Name, err)
		}
	}

	for _, slot := range f.Slots() {
		if !slot.Kind.IsAnimation() {
			continue
		}
		for _, anim := range f.Animations(slot.Kind).All() {
			if _, err := w.insert("animations", fileID, anim.Kind.String(), anim.Name, nullString(anim.Path)); err != nil {
				return err
			}
		}
	}

	for _, e := range f.EmbeddedFiles.All() {
		if _, err := w.insert("embedded_files", fileID, e.Name, len(e.Data)); err != nil {
			return err
		}
	}

	return nil
}

func (w *rowWriter) model(fileID int64, idx int, m *bfres.Model) error {
	var boneCount int
	if m.Skeleton != nil {
		boneCount = len(m.Skeleton.Bones)
	}

	modelID, err := w.insert("models",
		fileID,
		m.Name,
		idx,
		m.TotalVertexCount,
		boneCount,
		len(m.VertexBuffers),
		m.Shapes.Len(),
		m.Materials.Len(),
	)
	if err != nil {
		return err
	}

	if m.Skeleton != nil {
		if err := w.bones(modelID, m.Skeleton); err != nil {
			return err
		}
	}

	for _, v := range m.VertexBuffers {
		if err := w.vertexBuffer(modelID, v); err != nil {
			return fmt.Errorf("vertex buffer %d: %w", v.Index, err)
		}
	}

	for _, s := range m.Shapes.Values() {
		indexCount := 0
		if lod := s.LOD(0); lod != nil {
			indexCount = lod.IndexCount()
		}
		if _, err := w.insert("shapes",
			modelID,
			s.Name,
			s.Index,
			s.MaterialIndex,
			s.BoneIndex,
			s.VertexBufferIndex,
			s.VertexSkinCount,
			len(s.LODs),
			indexCount,
			s.Radius,
		); err != nil {
			return err
		}
	}

	for _, mat := range m.Materials.Values() {
		if err := w.material(modelID, mat); err != nil {
			return fmt.Errorf("material %s: %w", mat.Name, err)
		}
	}

	return nil
}

func (w *rowWriter) bones(modelID int64, s *bfres.Skeleton) error {
	// Bones store child links; the catalog stores the parent.
	parents := make(map[uint16]uint16, len(s.Bones))
	for _, b := range s.Bones {
		for _, c := range b.Children() {
			if _, seen := parents[c]; !seen {
				parents[c] = b.Index
			}
		}
	}

	for _, b := range s.Bones {
		var parent any
		if p, ok := parents[b.Index]; ok {
			parent = p
		}
		if _, err := w.insert("bones",
			modelID,
			b.Name,
			b.Index,
			parent,
			b.Flags,
			b.Scale[0], b.Scale[1], b.Scale[2],
			b.Rotation[0], b.Rotation[1], b.Rotation[2], b.Rotation[3],
			b.Translation[0], b.Translation[1], b.Translation[2],
		); err != nil {
			return err
		}
	}
	return nil
}

func (w *rowWriter) vertexBuffer(modelID int64, v *bfres.VertexBuffer) error {
	dataSize := 0
	for _, b := range v.Buffers {
		dataSize += len(b.Data)
	}

	bufferID, err := w.insert("vertex_buffers",
		modelID,
		v.Index,
		v.VertexCount,
		len(v.Attributes),
		len(v.Buffers),
		dataSize,
	)
	if err != nil {
		return err
	}

	for _, attr := range v.Attributes {
		if _, err := w.insert("vertex_attributes",
			bufferID,
			attr.Name,
			attr.BufferIndex,
			attr.ElementOffset,
			attr.Format.String(),
		); err != nil {
			return err
		}
	}
	return nil
}

func (w *rowWriter) material(modelID int64, m *bfres.Material) error {
	var shaderArchive, shadingModel any
	if sc := m.ShaderControl; sc != nil {
		shaderArchive = sc.ShaderArchive
		shadingModel = sc.ShadingModel
	}

	materialID, err := w.insert("materials",
		modelID,
		m.Name,
		m.Index,
		shaderArchive,
		shadingModel,
		m.RenderParameters.Len(),
		len(m.Parameters),
	)
	if err != nil {
		return err
	}

	for slot, binding := range m.TextureBindings() {
		if _, err := w.insert("material_textures",
			materialID,
			slot,
			binding.Texture,
			nullString(binding.Sampler),
		); err != nil {
			return err
		}
	}
	return nil
}

func (w *rowWriter) texture(fileID int64, t *bfres.Texture) error {
	_, err := w.insert("textures",
		fileID,
		t.Name,
		t.Width,
		t.Height,
		t.Depth,
		t.MipCount,
		t.Format.String(),
		t.Dim.String(),
		t.TileMode.String(),
		len(t.Data),
		len(t.MipData),
	)
	return err
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
