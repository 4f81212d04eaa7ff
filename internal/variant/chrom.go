package variant

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownChromosome is returned for contig names outside the canonical
// set of autosomes 1-22, X, Y and MT.
var ErrUnknownChromosome = errors.New("unknown chromosome")

// chroms lists the canonical chromosome names in output order.
var chroms = []string{
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "13",
	"14", "15", "16", "17", "18", "19", "20", "21", "22", "X", "Y", "MT",
}

var chromNo = buildChromNo()

func buildChromNo() map[string]int {
	m := make(map[string]int, len(chroms))
	for i, c := range chroms {
		m[c] = i + 1
	}
	return m
}

// CanonicalChrom maps a contig name to its canonical form: the "chr" prefix
// is stripped, case is normalized, and the mitochondrial aliases "M" and
// "chrM" become "MT".
func CanonicalChrom(chrom string) string {
	c := strings.ToUpper(chrom)
	c = strings.TrimPrefix(c, "CHR")
	if c == "M" {
		c = "MT"
	}
	return c
}

// ChromNo returns the canonical chromosome number (1-22 for the autosomes,
// 23 for X, 24 for Y, 25 for MT) used for coordinate ordering.
func ChromNo(chrom string) (int, error) {
	no, ok := chromNo[CanonicalChrom(chrom)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownChromosome, chrom)
	}
	return no, nil
}

// IsMito reports whether the contig is the mitochondrial chromosome.
func IsMito(chrom string) bool {
	return CanonicalChrom(chrom) == "MT"
}
