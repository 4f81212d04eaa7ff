package filter

import (
	"fmt"

	"github.com/varq/varq/internal/query"
	"github.com/varq/varq/internal/variant"
)

// sampleGenotype looks up and parses the genotype of one sample, turning
// missing call info and unparseable strings into invariant errors.
func sampleGenotype(rec *variant.Record, sample string) (variant.Genotype, error) {
	ci, ok := rec.CallInfos[sample]
	if !ok {
		return variant.GenotypeMissing, fmt.Errorf("%w: %q at %s:%d", ErrMissingCallInfo, sample, rec.Chrom, rec.Pos)
	}
	gt, err := variant.ParseGenotype(ci.Genotype)
	if err != nil {
		return variant.GenotypeMissing, fmt.Errorf("%w: sample %q at %s:%d: %v", ErrBadGenotype, sample, rec.Chrom, rec.Pos, err)
	}
	return gt, nil
}

// matchesChoice reports whether an observed genotype satisfies a fixed
// genotype choice.
func matchesChoice(gt variant.Genotype, choice query.GenotypeChoice) bool {
	switch choice {
	case query.ChoiceAny:
		return true
	case query.ChoiceRef:
		return gt == variant.GenotypeHomRef
	case query.ChoiceHet:
		return gt == variant.GenotypeHet
	case query.ChoiceHom:
		return gt == variant.GenotypeHomAlt
	case query.ChoiceVariant:
		return gt == variant.GenotypeHet || gt == variant.GenotypeHomAlt
	}
	return false
}

// passesGenotype applies the fixed per-sample genotype requirements.
// Samples assigned recessive roles are exempt here; their genotypes are
// evaluated per gene group by PassesForGene.
func passesGenotype(q *query.CaseQuery, rec *variant.Record) (bool, error) {
	for sample, choice := range q.Genotype.SampleGenotypes {
		if choice.IsRecessiveRole() {
			continue
		}
		gt, err := sampleGenotype(rec, sample)
		if err != nil {
			return false, err
		}
		if !matchesChoice(gt, choice) {
			return false, nil
		}
	}
	return true, nil
}
