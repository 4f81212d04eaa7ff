package variant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlleleFrequencies(t *testing.T) {
	rec := &Record{
		GnomadExomesAN: 1000, GnomadExomesHet: 10, GnomadExomesHom: 5, GnomadExomesHemi: 2,
		GnomadGenomesAN: 500, GnomadGenomesHet: 5,
		HelixAN: 200, HelixHet: 3, HelixHom: 1,
	}

	if got, want := rec.GnomadExomesAF(), 22.0/1000.0; got != want {
		t.Errorf("GnomadExomesAF() = %v, want %v", got, want)
	}
	if got, want := rec.GnomadGenomesAF(), 5.0/500.0; got != want {
		t.Errorf("GnomadGenomesAF() = %v, want %v", got, want)
	}
	if got, want := rec.HelixAF(), 4.0/200.0; got != want {
		t.Errorf("HelixAF() = %v, want %v", got, want)
	}
}

// Zero allele-number means frequency 0, not a division error.
func TestAlleleFrequencyZeroAN(t *testing.T) {
	rec := &Record{GnomadExomesHet: 5}
	if got := rec.GnomadExomesAF(); got != 0 {
		t.Errorf("GnomadExomesAF() with AN=0 = %v, want 0", got)
	}
}

func TestRecordEnd(t *testing.T) {
	tests := []struct {
		pos  int64
		ref  string
		want int64
	}{
		{100, "A", 100},
		{100, "AT", 101},
		{100, "ATTTT", 104},
	}
	for _, tt := range tests {
		rec := &Record{Pos: tt.pos, Ref: tt.ref}
		if got := rec.End(); got != tt.want {
			t.Errorf("End() for pos=%d ref=%q = %d, want %d", tt.pos, tt.ref, got, tt.want)
		}
	}
}

func TestRecordGeneID(t *testing.T) {
	rec := &Record{}
	if got := rec.GeneID(); got != "" {
		t.Errorf("GeneID() without annotation = %q, want empty", got)
	}
	rec.AnnFields = []AnnField{{GeneID: "HGNC:1100"}, {GeneID: "HGNC:2"}}
	if got := rec.GeneID(); got != "HGNC:1100" {
		t.Errorf("GeneID() = %q, want HGNC:1100", got)
	}
}

func TestReader(t *testing.T) {
	input := `{"chrom":"1","pos":100,"reference":"A","alternative":"T"}
{"chrom":"chrX","pos":200,"reference":"G","alternative":"C"}
`
	r := NewReader(strings.NewReader(input))

	rec, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "1", rec.Chrom)
	require.Equal(t, int64(100), rec.Pos)

	rec, err = r.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "chrX", rec.Chrom)

	rec, err = r.Next()
	require.NoError(t, err)
	require.Nil(t, rec, "expected nil record at EOF")
}

func TestReaderMalformed(t *testing.T) {
	r := NewReader(strings.NewReader(`{"chrom": not json`))
	_, err := r.Next()
	require.Error(t, err)
}
