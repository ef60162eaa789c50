package dispatch

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kilianp07/tgcsim/core/model"
)

// keys maps a sort key name to its projection.
var keys = map[string]func(Slot) float64{
	"toa": func(s Slot) float64 { return s.Arrival },
	"ted": func(s Slot) float64 { return s.Deadline },
	"tid": func(s Slot) float64 { return s.ProcessingHours },
	"tcr": func(s Slot) float64 { return s.RemainingChargeHours },
	"llx": func(s Slot) float64 { return s.Laxity },
}

// Rule ranks slots by a named key.
type Rule struct {
	Name        string
	Key         string
	Descending  bool
	Description string
}

var rules = []Rule{
	{Name: "FIFO", Key: "toa", Description: "first in, first out"},
	{Name: "LIFO", Key: "toa", Descending: true, Description: "last in, first out"},
	{Name: "EDF", Key: "ted", Description: "earliest deadline first"},
	{Name: "EDD", Key: "ted", Description: "earliest due date, alias of EDF"},
	{Name: "LDD", Key: "ted", Descending: true, Description: "latest due date first"},
	{Name: "SPT", Key: "tid", Description: "shortest processing time"},
	{Name: "LPT", Key: "tid", Descending: true, Description: "longest processing time"},
	{Name: "SRT", Key: "tcr", Description: "shortest remaining charge time"},
	{Name: "LRT", Key: "tcr", Descending: true, Description: "longest remaining charge time"},
	{Name: "LLX", Key: "llx", Description: "least laxity first"},
	{Name: "MLX", Key: "llx", Descending: true, Description: "most laxity first"},
}

// Rules returns the rule catalog.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// ParseRule resolves a rule by name (case insensitive) or by a key expression
// such as "ted" or "-llx".
func ParseRule(name string) (Rule, error) {
	n := strings.TrimSpace(name)
	for _, r := range rules {
		if strings.EqualFold(r.Name, n) {
			return r, nil
		}
	}
	expr := strings.ToLower(n)
	desc := strings.HasPrefix(expr, "-")
	expr = strings.TrimPrefix(expr, "-")
	if _, ok := keys[expr]; ok {
		return Rule{Name: n, Key: expr, Descending: desc}, nil
	}
	return Rule{}, fmt.Errorf("unknown priority rule %q: %w", name, model.ErrConfiguration)
}

// SortKey returns the key of s. Inactive slots always sort last.
func (r Rule) SortKey(s Slot) float64 {
	if !s.Active() {
		return math.Inf(1)
	}
	k := keys[r.Key](s)
	if r.Descending {
		return -k
	}
	return k
}

// Rank returns a copy of slots in ascending key order. Ties keep their input order.
func (r Rule) Rank(slots []Slot) []Slot {
	type keyed struct {
		slot Slot
		key  float64
	}
	ks := make([]keyed, len(slots))
	for i, s := range slots {
		ks[i] = keyed{slot: s, key: r.SortKey(s)}
	}
	sort.SliceStable(ks, func(a, b int) bool { return ks[a].key < ks[b].key })
	out := make([]Slot, len(ks))
	for i, k := range ks {
		out[i] = k.slot
	}
	return out
}
