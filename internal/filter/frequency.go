package filter

import (
	"github.com/varq/varq/internal/query"
	"github.com/varq/varq/internal/variant"
)

// passesFrequency checks the population frequency thresholds. Each source is
// gated by its enabled flag; a nil threshold is not checked. Mitochondrial
// loci use the HelixMtDb thresholds and the gnomAD genomes het/hom counts
// only: mtDNA has no hemizygous carriers, so the genomes hemizygous
// threshold is skipped there even when configured.
func passesFrequency(q *query.CaseQuery, rec *variant.Record) bool {
	pop := &q.PopulationFrequency
	isMtdna := variant.IsMito(rec.Chrom)

	if isMtdna {
		helix := &pop.HelixMtDb
		if helix.Enabled &&
			(helix.Frequency != nil && rec.HelixAF() > *helix.Frequency ||
				helix.Heteroplasmic != nil && rec.HelixHet > *helix.Heteroplasmic ||
				helix.Homoplasmic != nil && rec.HelixHom > *helix.Homoplasmic) {
			return false
		}
	} else if pop.Gnomad.ExomesEnabled &&
		(pop.Gnomad.ExomesFrequency != nil && rec.GnomadExomesAF() > *pop.Gnomad.ExomesFrequency ||
			pop.Gnomad.ExomesHeterozygous != nil && rec.GnomadExomesHet > *pop.Gnomad.ExomesHeterozygous ||
			pop.Gnomad.ExomesHomozygous != nil && rec.GnomadExomesHom > *pop.Gnomad.ExomesHomozygous ||
			pop.Gnomad.ExomesHemizygous != nil && rec.GnomadExomesHemi > *pop.Gnomad.ExomesHemizygous) {
		return false
	}

	if pop.Gnomad.GenomesEnabled &&
		(pop.Gnomad.GenomesFrequency != nil && rec.GnomadGenomesAF() > *pop.Gnomad.GenomesFrequency ||
			pop.Gnomad.GenomesHeterozygous != nil && rec.GnomadGenomesHet > *pop.Gnomad.GenomesHeterozygous ||
			pop.Gnomad.GenomesHomozygous != nil && rec.GnomadGenomesHom > *pop.Gnomad.GenomesHomozygous ||
			!isMtdna &&
				pop.Gnomad.GenomesHemizygous != nil && rec.GnomadGenomesHemi > *pop.Gnomad.GenomesHemizygous) {
		return false
	}

	return true
}
