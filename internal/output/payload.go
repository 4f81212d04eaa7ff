// Package output assembles annotated result rows and writes the final
// coordinate-ordered TSV.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/varq/varq/internal/annotate"
	"github.com/varq/varq/internal/consequence"
	"github.com/varq/varq/internal/variant"
)

// GeneRelated is the gene-level section of the result payload.
type GeneRelated struct {
	HgncID       string                    `json:"hgnc_id,omitempty"`
	Symbol       string                    `json:"symbol,omitempty"`
	Name         string                    `json:"name,omitempty"`
	EnsemblID    string                    `json:"ensembl_id,omitempty"`
	NcbiID       string                    `json:"ncbi_id,omitempty"`
	Consequences []consequence.Consequence `json:"consequences,omitempty"`
}

// FrequencyCounts carries the carrier counts of one population source.
type FrequencyCounts struct {
	AN   int `json:"an"`
	Het  int `json:"het"`
	Hom  int `json:"hom"`
	Hemi int `json:"hemi,omitempty"`
}

// VariantRelated is the variant-level section of the result payload.
type VariantRelated struct {
	GnomadExomes  FrequencyCounts       `json:"gnomad_exomes"`
	GnomadGenomes FrequencyCounts       `json:"gnomad_genomes"`
	HelixMtDb     FrequencyCounts       `json:"helixmtdb"`
	Scores        *annotate.VariantInfo `json:"scores,omitempty"`
}

// CallRelated is the per-sample call section of the result payload.
type CallRelated struct {
	CallInfos map[string]variant.CallInfo `json:"call_infos"`
}

// Payload is the structured JSON column of one result row.
type Payload struct {
	CaseUUID       string         `json:"case_uuid"`
	GeneRelated    GeneRelated    `json:"gene_related"`
	VariantRelated VariantRelated `json:"variant_related"`
	CallRelated    CallRelated    `json:"call_related"`
}

// Row is one output record of the result set.
type Row struct {
	ResultSetID  string
	SodarUUID    string
	Release      string
	Chromosome   string
	ChromosomeNo int
	Start        int64
	End          int64
	Bin          int
	Reference    string
	Alternative  string
	Payload      string
}

// PayloadBuilder assembles result rows from surviving records, consulting
// the annotator for gene and variant metadata and drawing row UUIDs from
// the configured random source.
type PayloadBuilder struct {
	ann         annotate.Annotator
	resultSetID string
	caseUUID    string
	release     string
	rng         io.Reader
}

// NewPayloadBuilder creates a builder. rng is the byte source for row
// UUIDs; handing in a seeded source makes output reproducible.
func NewPayloadBuilder(ann annotate.Annotator, resultSetID, caseUUID, release string, rng io.Reader) *PayloadBuilder {
	if resultSetID == "" {
		resultSetID = "."
	}
	return &PayloadBuilder{
		ann:         ann,
		resultSetID: resultSetID,
		caseUUID:    caseUUID,
		release:     release,
		rng:         rng,
	}
}

// Build assembles the output row for one record.
func (b *PayloadBuilder) Build(rec *variant.Record) (*Row, error) {
	gene, err := b.buildGeneRelated(rec)
	if err != nil {
		return nil, fmt.Errorf("gene-related payload: %w", err)
	}
	variantRelated, err := b.buildVariantRelated(rec)
	if err != nil {
		return nil, fmt.Errorf("variant-related payload: %w", err)
	}

	payload := Payload{
		CaseUUID:       b.caseUUID,
		GeneRelated:    gene,
		VariantRelated: variantRelated,
		CallRelated:    CallRelated{CallInfos: rec.CallInfos},
	}
	payloadJSON, err := json.Marshal(&payload)
	if err != nil {
		return nil, fmt.Errorf("serialize payload: %w", err)
	}

	chromNo, err := variant.ChromNo(rec.Chrom)
	if err != nil {
		return nil, err
	}
	end := rec.End()
	bin, err := BinFromRange(rec.Pos-1, end)
	if err != nil {
		return nil, fmt.Errorf("bin for %s:%d: %w", rec.Chrom, rec.Pos, err)
	}

	rowUUID, err := uuid.NewRandomFromReader(b.rng)
	if err != nil {
		return nil, fmt.Errorf("generate row uuid: %w", err)
	}

	return &Row{
		ResultSetID:  b.resultSetID,
		SodarUUID:    rowUUID.String(),
		Release:      b.release,
		Chromosome:   rec.Chrom,
		ChromosomeNo: chromNo,
		Start:        rec.Pos,
		End:          end,
		Bin:          bin,
		Reference:    rec.Ref,
		Alternative:  rec.Alt,
		Payload:      string(payloadJSON),
	}, nil
}

func (b *PayloadBuilder) buildGeneRelated(rec *variant.Record) (GeneRelated, error) {
	var gr GeneRelated
	if len(rec.AnnFields) == 0 {
		return gr, nil
	}
	ann := rec.AnnFields[0]
	gr.HgncID = ann.GeneID
	gr.Symbol = ann.GeneSymbol
	gr.Consequences = ann.Consequences

	if ann.GeneID == "" {
		return gr, nil
	}
	gi, err := b.ann.GeneInfo(ann.GeneID)
	if err != nil {
		return gr, err
	}
	if gi != nil {
		gr.Symbol = gi.Symbol
		gr.Name = gi.Name
		gr.EnsemblID = gi.EnsemblID
		gr.NcbiID = gi.NcbiID
	}
	return gr, nil
}

func (b *PayloadBuilder) buildVariantRelated(rec *variant.Record) (VariantRelated, error) {
	vr := VariantRelated{
		GnomadExomes: FrequencyCounts{
			AN: rec.GnomadExomesAN, Het: rec.GnomadExomesHet,
			Hom: rec.GnomadExomesHom, Hemi: rec.GnomadExomesHemi,
		},
		GnomadGenomes: FrequencyCounts{
			AN: rec.GnomadGenomesAN, Het: rec.GnomadGenomesHet,
			Hom: rec.GnomadGenomesHom, Hemi: rec.GnomadGenomesHemi,
		},
		HelixMtDb: FrequencyCounts{
			AN: rec.HelixAN, Het: rec.HelixHet, Hom: rec.HelixHom,
		},
	}
	vi, err := b.ann.VariantInfo(rec.Chrom, rec.Pos, rec.Ref, rec.Alt)
	if err != nil {
		return vr, err
	}
	vr.Scores = vi
	return vr, nil
}
