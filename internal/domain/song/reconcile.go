package song

import (
	"cmp"
	"slices"
	"strings"
)

// Strategy selects how primary and secondary records are joined.
type Strategy uint8

const (
	// StrategyAuto joins by shared id when every secondary record carries
	// one and falls back to title matching otherwise.
	StrategyAuto Strategy = iota
	// StrategyTitle sorts both sides by normalized title and merge-joins them.
	StrategyTitle
	// StrategyID joins on the primary id carried by secondary records.
	StrategyID
)

func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyTitle:
		return "title"
	case StrategyID:
		return "id"
	default:
		return "unknown"
	}
}

// Report describes the outcome of one reconciliation.
type Report struct {
	// Strategy is the strategy actually used. It is never StrategyAuto.
	Strategy    Strategy
	Matched     int
	PrimaryOnly int
	// SecondaryOnly lists display names of secondary records with no match.
	SecondaryOnly []string
	// DuplicateKeys lists match keys that occur more than once on either side.
	DuplicateKeys []string
	// DuplicateIDs lists primary ids seen more than once. Only the first
	// record with each id is kept.
	DuplicateIDs []ID
}

// ReconcileOption configures Reconcile.
type ReconcileOption func(*reconcileConfig)

type reconcileConfig struct {
	strategy   Strategy
	normalizer *Normalizer
}

// WithStrategy forces a join strategy.
func WithStrategy(s Strategy) ReconcileOption {
	return func(c *reconcileConfig) {
		c.strategy = s
	}
}

// WithNormalizer sets the normalizer used for title keys.
func WithNormalizer(n *Normalizer) ReconcileOption {
	return func(c *reconcileConfig) {
		if n != nil {
			c.normalizer = n
		}
	}
}

// Reconcile joins the two song lists into a canonical Catalog. Every distinct
// primary id yields exactly one song. Secondary records contribute only their
// local id; unmatched ones are listed in the report and otherwise dropped.
//
// Equal title keys are paired positionally: after a stable sort (ties broken
// by id and local id) the n-th primary with a key pairs with the n-th
// secondary with that key.
func Reconcile(primary []PrimaryRecord, secondary []SecondaryRecord, opts ...ReconcileOption) (*Catalog, Report) {
	cfg := reconcileConfig{strategy: StrategyAuto}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.normalizer == nil {
		cfg.normalizer = NewNormalizer()
	}

	primary, dupIDs := uniqueByID(primary)

	strategy := cfg.strategy
	if strategy != StrategyTitle && strategy != StrategyID {
		strategy = StrategyTitle
		if len(secondary) > 0 && allShared(secondary) {
			strategy = StrategyID
		}
	}

	j := newJoin(len(primary))
	var report Report
	switch strategy {
	case StrategyID:
		report = j.byID(primary, secondary)
	default:
		report = j.byTitle(primary, secondary, cfg.normalizer)
	}
	report.Strategy = strategy
	report.DuplicateIDs = dupIDs

	songs := make([]Song, len(primary))
	for i, rec := range primary {
		songs[i] = newSong(rec, j.local[i], j.linked[i])
		if j.linked[i] {
			report.Matched++
		}
	}
	report.PrimaryOnly = len(primary) - report.Matched

	return NewCatalog(songs), report
}

// PrimaryOnly builds a catalog in which no song is linked.
func PrimaryOnly(primary []PrimaryRecord) *Catalog {
	cat, _ := Reconcile(primary, nil, WithStrategy(StrategyTitle))
	return cat
}

// uniqueByID drops records whose id was already seen, keeping input order.
func uniqueByID(primary []PrimaryRecord) ([]PrimaryRecord, []ID) {
	seen := make(map[ID]struct{}, len(primary))
	var dups []ID
	out := make([]PrimaryRecord, 0, len(primary))
	for _, rec := range primary {
		if _, dup := seen[rec.ID]; dup {
			dups = append(dups, rec.ID)
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec)
	}
	return out, dups
}

func allShared(secondary []SecondaryRecord) bool {
	for _, s := range secondary {
		if !s.HasSharedID {
			return false
		}
	}
	return true
}

// join holds per-primary link results, indexed like the primary input.
type join struct {
	local   []LocalID
	linked  []bool
	claimed map[LocalID]struct{}
}

func newJoin(n int) *join {
	return &join{
		local:   make([]LocalID, n),
		linked:  make([]bool, n),
		claimed: make(map[LocalID]struct{}),
	}
}

// attach links primary i to local. A local id already attached elsewhere is refused.
func (j *join) attach(i int, local LocalID) bool {
	if _, taken := j.claimed[local]; taken || j.linked[i] {
		return false
	}
	j.claimed[local] = struct{}{}
	j.local[i] = local
	j.linked[i] = true
	return true
}

type keyedPrimary struct {
	key string
	idx int
	id  ID
}

type keyedSecondary struct {
	key string
	rec SecondaryRecord
}

func (j *join) byTitle(primary []PrimaryRecord, secondary []SecondaryRecord, n *Normalizer) Report {
	pk := make([]keyedPrimary, len(primary))
	for i, rec := range primary {
		pk[i] = keyedPrimary{key: n.MatchKey(rec.Name), idx: i, id: rec.ID}
	}
	slices.SortStableFunc(pk, func(a, b keyedPrimary) int {
		if c := strings.Compare(a.key, b.key); c != 0 {
			return c
		}
		return a.id.Compare(b.id)
	})

	sk := make([]keyedSecondary, len(secondary))
	for i, rec := range secondary {
		sk[i] = keyedSecondary{key: n.MatchKey(rec.Name), rec: rec}
	}
	slices.SortStableFunc(sk, func(a, b keyedSecondary) int {
		if c := strings.Compare(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(a.rec.LocalID, b.rec.LocalID)
	})

	var report Report
	report.DuplicateKeys = duplicateKeys(pk, sk)

	p, s := 0, 0
	for p < len(pk) && s < len(sk) {
		switch c := strings.Compare(sk[s].key, pk[p].key); {
		case c == 0:
			if !j.attach(pk[p].idx, sk[s].rec.LocalID) {
				report.SecondaryOnly = append(report.SecondaryOnly, sk[s].rec.Name)
			}
			p++
			s++
		case c > 0:
			// Only in primary; usually a song the secondary has not added yet.
			p++
		default:
			// Only in secondary; usually a long-removed song.
			report.SecondaryOnly = append(report.SecondaryOnly, sk[s].rec.Name)
			s++
		}
	}
	for ; s < len(sk); s++ {
		report.SecondaryOnly = append(report.SecondaryOnly, sk[s].rec.Name)
	}
	return report
}

func (j *join) byID(primary []PrimaryRecord, secondary []SecondaryRecord) Report {
	index := make(map[ID]int, len(primary))
	for i, rec := range primary {
		index[rec.ID] = i
	}

	var report Report
	for _, rec := range secondary {
		i, ok := index[rec.SharedID]
		if !rec.HasSharedID || !ok || !j.attach(i, rec.LocalID) {
			report.SecondaryOnly = append(report.SecondaryOnly, rec.Name)
		}
	}
	return report
}

func duplicateKeys(pk []keyedPrimary, sk []keyedSecondary) []string {
	var dups []string
	add := func(key string) {
		if len(dups) == 0 || dups[len(dups)-1] != key {
			dups = append(dups, key)
		}
	}
	for i := 1; i < len(pk); i++ {
		if pk[i].key == pk[i-1].key {
			add(pk[i].key)
		}
	}
	for i := 1; i < len(sk); i++ {
		if sk[i].key == sk[i-1].key {
			add(sk[i].key)
		}
	}
	slices.Sort(dups)
	return slices.Compact(dups)
}
