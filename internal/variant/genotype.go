package variant

import (
	"fmt"
	"strings"
)

// Genotype is the parsed form of a per-sample genotype string.
type Genotype int

const (
	// GenotypeMissing means no call was made for the sample (e.g. "./.").
	GenotypeMissing Genotype = iota
	// GenotypeHomRef means all observed alleles are the reference allele.
	GenotypeHomRef
	// GenotypeHet means both reference and alternate alleles were observed.
	GenotypeHet
	// GenotypeHomAlt means all observed alleles are the alternate allele.
	GenotypeHomAlt
)

// String returns the canonical unphased genotype string.
func (g Genotype) String() string {
	switch g {
	case GenotypeHomRef:
		return "0/0"
	case GenotypeHet:
		return "0/1"
	case GenotypeHomAlt:
		return "1/1"
	default:
		return "./."
	}
}

// ParseGenotype parses a VCF-style genotype string such as "0/1", "1|0",
// "1/1", "./." or the haploid forms "0" and "1". Phasing is ignored.
// Any no-call allele makes the whole genotype missing.
func ParseGenotype(s string) (Genotype, error) {
	if s == "" {
		return GenotypeMissing, fmt.Errorf("empty genotype string")
	}

	alleles := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '|'
	})
	if len(alleles) == 0 || len(alleles) > 2 {
		return GenotypeMissing, fmt.Errorf("malformed genotype string %q", s)
	}

	ref, alt := 0, 0
	for _, a := range alleles {
		switch a {
		case ".":
			return GenotypeMissing, nil
		case "0":
			ref++
		default:
			// Any non-reference allele index counts as alternate.
			for _, r := range a {
				if r < '0' || r > '9' {
					return GenotypeMissing, fmt.Errorf("malformed genotype string %q", s)
				}
			}
			alt++
		}
	}

	switch {
	case alt == 0:
		return GenotypeHomRef, nil
	case ref == 0:
		return GenotypeHomAlt, nil
	default:
		return GenotypeHet, nil
	}
}
