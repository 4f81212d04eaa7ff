package filter

import (
	"github.com/varq/varq/internal/query"
	"github.com/varq/varq/internal/variant"
)

// passesConsequence checks whether any annotation field carries a
// consequence from the query's allow-set. No configured consequences means
// an open filter.
func passesConsequence(q *query.CaseQuery, rec *variant.Record) bool {
	if len(q.Consequences) == 0 {
		return true
	}
	for _, ann := range rec.AnnFields {
		for _, csq := range ann.Consequences {
			for _, allowed := range q.Consequences {
				if csq == allowed {
					return true
				}
			}
		}
	}
	return false
}
