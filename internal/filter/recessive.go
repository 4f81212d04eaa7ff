package filter

import (
	"fmt"

	"github.com/varq/varq/internal/query"
	"github.com/varq/varq/internal/variant"
)

// PassesForGene decides whether the variants of one gene satisfy the
// configured recessive mode. All records must have survived the
// per-variant filter already. With recessive mode disabled the group
// passes unconditionally.
//
// Two patterns can pass:
//
//  1. classic recessive: the index is hom. alt on one variant and every
//     configured parent is het. there — a single such variant suffices;
//  2. compound heterozygous: at least two variants with a het. index,
//     and across the group every configured parent has been seen once as
//     het. and once as hom. ref. (evidence of one variant inherited from
//     each side).
func PassesForGene(q *query.CaseQuery, recs []*variant.Record) (bool, error) {
	mode := q.RecessiveModeOrDefault()
	if mode == query.RecessiveModeDisabled {
		return true, nil
	}

	var index string
	var parents []string
	for sample, choice := range q.Genotype.SampleGenotypes {
		switch choice {
		case query.ChoiceRecessiveIndex:
			index = sample
		case query.ChoiceRecessiveFather, query.ChoiceRecessiveMother:
			parents = append(parents, sample)
		}
	}
	if index == "" {
		return false, fmt.Errorf("recessive mode %q requires a sample with the index role", mode)
	}
	if len(parents) > 2 {
		return false, fmt.Errorf("%w: %d configured", ErrTooManyParents, len(parents))
	}

	homozygousOK := mode == query.RecessiveModeHomozygous || mode == query.RecessiveModeAny
	compHetOK := mode == query.RecessiveModeCompoundHeterozygous || mode == query.RecessiveModeAny

	seenHetParents := make(map[string]bool)
	seenRefParents := make(map[string]bool)
	seenIndexHet := 0

	for _, rec := range recs {
		indexGT, err := sampleGenotype(rec, index)
		if err != nil {
			return false, err
		}

		var hetParents, refParents []string
		homAltParent := false
		for _, parent := range parents {
			gt, err := sampleGenotype(rec, parent)
			if err != nil {
				return false, err
			}
			switch gt {
			case variant.GenotypeHomAlt:
				homAltParent = true
			case variant.GenotypeHet:
				hetParents = append(hetParents, parent)
			case variant.GenotypeHomRef:
				refParents = append(refParents, parent)
			}
		}
		if homAltParent {
			// A hom. alt parent is incompatible with either pattern; skip
			// this variant but keep evaluating the group.
			continue
		}

		switch indexGT {
		case variant.GenotypeHomAlt:
			if homozygousOK {
				if len(hetParents) == len(parents) {
					return true, nil
				}
			}
		case variant.GenotypeHet:
			if compHetOK {
				switch len(parents) {
				case 0:
					// No parents configured, the het index alone counts.
				case 1:
					if len(hetParents) == 1 {
						seenHetParents[hetParents[0]] = true
					} else if len(refParents) == 1 {
						seenRefParents[refParents[0]] = true
					} else {
						continue
					}
				case 2:
					if len(hetParents) == 1 && len(refParents) == 1 {
						seenHetParents[hetParents[0]] = true
						seenRefParents[refParents[0]] = true
					} else {
						continue
					}
				}
				seenIndexHet++
			}
		default:
			// Index is hom. ref or missing; this variant cannot contribute.
			continue
		}
	}

	if compHetOK {
		return seenIndexHet >= 2 &&
			len(seenHetParents) == len(parents) &&
			len(seenRefParents) == len(parents), nil
	}
	return false, nil
}
