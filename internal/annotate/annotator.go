// Package annotate provides read-only keyed lookups of gene and variant
// metadata used to assemble the output payload.
package annotate

// GeneInfo is the precomputed gene metadata keyed by gene identifier.
type GeneInfo struct {
	HgncID    string `json:"hgnc_id"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name,omitempty"`
	EnsemblID string `json:"ensembl_id,omitempty"`
	NcbiID    string `json:"ncbi_id,omitempty"`
}

// VariantInfo is the precomputed variant metadata keyed by locus and
// alleles.
type VariantInfo struct {
	CaddPhred           *float64 `json:"cadd_phred,omitempty"`
	ClinvarVCV          string   `json:"clinvar_vcv,omitempty"`
	ClinvarSignificance string   `json:"clinvar_significance,omitempty"`
	DbsnpID             string   `json:"dbsnp_id,omitempty"`
}

// Annotator is the lookup contract the payload builder consumes. Absence
// of a key is a normal "no annotation" result reported as (nil, nil);
// errors indicate store failures.
type Annotator interface {
	GeneInfo(hgncID string) (*GeneInfo, error)
	VariantInfo(chrom string, pos int64, ref, alt string) (*VariantInfo, error)
}
