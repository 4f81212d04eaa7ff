package annotate

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

// Store is a DuckDB-backed Annotator. The database is populated by the
// metadata ETL and queried read-only here; PutGene and PutVariant exist for
// building small databases in tests and tooling.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens a DuckDB database at the given path. Use an empty string for
// an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", path, err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS genes (
		hgnc_id VARCHAR PRIMARY KEY,
		symbol VARCHAR,
		name VARCHAR,
		ensembl_id VARCHAR,
		ncbi_id VARCHAR
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS variants (
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		cadd_phred DOUBLE,
		clinvar_vcv VARCHAR,
		clinvar_significance VARCHAR,
		dbsnp_id VARCHAR,
		PRIMARY KEY (chrom, pos, ref, alt)
	)`)
	return err
}

// GeneInfo looks up gene metadata; a missing key yields (nil, nil).
func (s *Store) GeneInfo(hgncID string) (*GeneInfo, error) {
	var gi GeneInfo
	var name, ensembl, ncbi sql.NullString
	err := s.db.QueryRow(
		`SELECT hgnc_id, symbol, name, ensembl_id, ncbi_id FROM genes WHERE hgnc_id = ?`,
		hgncID,
	).Scan(&gi.HgncID, &gi.Symbol, &name, &ensembl, &ncbi)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query gene %s: %w", hgncID, err)
	}
	gi.Name = name.String
	gi.EnsemblID = ensembl.String
	gi.NcbiID = ncbi.String
	return &gi, nil
}

// VariantInfo looks up variant metadata; a missing key yields (nil, nil).
func (s *Store) VariantInfo(chrom string, pos int64, ref, alt string) (*VariantInfo, error) {
	var vi VariantInfo
	var cadd sql.NullFloat64
	var vcv, sig, dbsnp sql.NullString
	err := s.db.QueryRow(
		`SELECT cadd_phred, clinvar_vcv, clinvar_significance, dbsnp_id
		 FROM variants WHERE chrom = ? AND pos = ? AND ref = ? AND alt = ?`,
		chrom, pos, ref, alt,
	).Scan(&cadd, &vcv, &sig, &dbsnp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query variant %s:%d:%s>%s: %w", chrom, pos, ref, alt, err)
	}
	if cadd.Valid {
		vi.CaddPhred = &cadd.Float64
	}
	vi.ClinvarVCV = vcv.String
	vi.ClinvarSignificance = sig.String
	vi.DbsnpID = dbsnp.String
	return &vi, nil
}

// PutGene inserts or replaces one gene row.
func (s *Store) PutGene(gi *GeneInfo) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO genes (hgnc_id, symbol, name, ensembl_id, ncbi_id) VALUES (?, ?, ?, ?, ?)`,
		gi.HgncID, gi.Symbol, gi.Name, gi.EnsemblID, gi.NcbiID,
	)
	if err != nil {
		return fmt.Errorf("insert gene %s: %w", gi.HgncID, err)
	}
	return nil
}

// PutVariant inserts or replaces one variant row.
func (s *Store) PutVariant(chrom string, pos int64, ref, alt string, vi *VariantInfo) error {
	var cadd sql.NullFloat64
	if vi.CaddPhred != nil {
		cadd = sql.NullFloat64{Float64: *vi.CaddPhred, Valid: true}
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO variants
		 (chrom, pos, ref, alt, cadd_phred, clinvar_vcv, clinvar_significance, dbsnp_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		chrom, pos, ref, alt, cadd, vi.ClinvarVCV, vi.ClinvarSignificance, vi.DbsnpID,
	)
	if err != nil {
		return fmt.Errorf("insert variant %s:%d:%s>%s: %w", chrom, pos, ref, alt, err)
	}
	return nil
}
