package identity

// trigrams returns the set of 3-character shingles of s, padding the front
// with two spaces and the end with one the way Postgres's pg_trgm extension
// does, so Similarity agrees with the database's similarity() scores on the
// cases that matter. Nothing in the pipeline calls Similarity: the resolver
// and the weekly reconciliation job both query Postgres's similarity()
// directly.
func trigrams(s string) map[string]struct{} {
	padded := "  " + s + " "
	set := make(map[string]struct{})
	for i := 0; i+3 <= len(padded); i++ {
		set[padded[i:i+3]] = struct{}{}
	}
	return set
}

// Similarity returns the Jaccard similarity of the trigram sets of a and b,
// in [0, 1].
func Similarity(a, b string) float64 {
	ta, tb := trigrams(a), trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		if a == b {
			return 1
		}
		return 0
	}

	intersection := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			intersection++
		}
	}

	union := len(ta) + len(tb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
