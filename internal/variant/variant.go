// Package variant defines the sequence-variant record model consumed by the
// query engine: a locus, per-sample calls, pre-computed annotation fields,
// and population frequency counters.
package variant

import (
	"github.com/varq/varq/internal/consequence"
)

// CallInfo holds the genotype call of one sample for one variant.
type CallInfo struct {
	Sample   string   `json:"sample"`
	Genotype string   `json:"genotype"`
	Quality  *float64 `json:"quality,omitempty"`
	DP       *int     `json:"dp,omitempty"`
	AD       *int     `json:"ad,omitempty"`
	PhaseSet *int     `json:"phase_set,omitempty"`
}

// AnnField is one transcript/allele annotation entry attached to a record
// by the upstream ingest step.
type AnnField struct {
	Allele       string                    `json:"allele"`
	Consequences []consequence.Consequence `json:"consequences"`
	Impact       consequence.Impact        `json:"putative_impact"`
	GeneSymbol   string                    `json:"gene_symbol"`
	GeneID       string                    `json:"gene_id"`
	FeatureID    string                    `json:"feature_id"`
	HgvsT        string                    `json:"hgvs_t,omitempty"`
	HgvsP        string                    `json:"hgvs_p,omitempty"`
	TxPos        *int                      `json:"tx_pos,omitempty"`
	CDSPos       *int                      `json:"cds_pos,omitempty"`
	ProteinPos   *int                      `json:"protein_pos,omitempty"`
}

// Record is one input unit: a single alternate allele at a single locus
// together with everything the query needs to decide on it.
type Record struct {
	Chrom string `json:"chrom"`
	Pos   int64  `json:"pos"` // 1-based
	Ref   string `json:"reference"`
	Alt   string `json:"alternative"`

	CallInfos map[string]CallInfo `json:"call_infos"`
	AnnFields []AnnField          `json:"ann_fields"`

	GnomadExomesAN   int `json:"gnomad_exomes_an"`
	GnomadExomesHet  int `json:"gnomad_exomes_het"`
	GnomadExomesHom  int `json:"gnomad_exomes_hom"`
	GnomadExomesHemi int `json:"gnomad_exomes_hemi"`

	GnomadGenomesAN   int `json:"gnomad_genomes_an"`
	GnomadGenomesHet  int `json:"gnomad_genomes_het"`
	GnomadGenomesHom  int `json:"gnomad_genomes_hom"`
	GnomadGenomesHemi int `json:"gnomad_genomes_hemi"`

	HelixAN  int `json:"helix_an"`
	HelixHet int `json:"helix_het"`
	HelixHom int `json:"helix_hom"`
}

// af computes an allele frequency with the convention that a source with no
// observed alleles has frequency 0.
func af(count, an int) float64 {
	if an == 0 {
		return 0
	}
	return float64(count) / float64(an)
}

// GnomadExomesAF returns the gnomAD exomes alternate allele frequency.
func (r *Record) GnomadExomesAF() float64 {
	return af(r.GnomadExomesHet+2*r.GnomadExomesHom+r.GnomadExomesHemi, r.GnomadExomesAN)
}

// GnomadGenomesAF returns the gnomAD genomes alternate allele frequency.
func (r *Record) GnomadGenomesAF() float64 {
	return af(r.GnomadGenomesHet+2*r.GnomadGenomesHom+r.GnomadGenomesHemi, r.GnomadGenomesAN)
}

// HelixAF returns the HelixMtDb alternate allele frequency.
func (r *Record) HelixAF() float64 {
	return af(r.HelixHet+r.HelixHom, r.HelixAN)
}

// GeneID returns the gene identifier of the first annotation field, or ""
// for records without annotation (used as the gene grouping key).
func (r *Record) GeneID() string {
	if len(r.AnnFields) == 0 {
		return ""
	}
	return r.AnnFields[0].GeneID
}

// End returns the 1-based inclusive end position of the reference span.
func (r *Record) End() int64 {
	return r.Pos + int64(len(r.Ref)) - 1
}
