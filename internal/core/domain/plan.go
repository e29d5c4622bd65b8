package domain

// PlanCatalog maps a plan to its daily generation allowance.
// The zero value holds no plans; use DefaultPlanCatalog.
type PlanCatalog struct {
	quotas map[Plan]int
}

// NewPlanCatalog copies quotas so later mutation of the argument has no effect.
func NewPlanCatalog(quotas map[Plan]int) PlanCatalog {
	cp := make(map[Plan]int, len(quotas))
	for p, q := range quotas {
		cp[p] = q
	}
	return PlanCatalog{quotas: cp}
}

// DefaultPlanCatalog returns the compiled-in plan table.
func DefaultPlanCatalog() PlanCatalog {
	return NewPlanCatalog(map[Plan]int{
		PlanFree:     3,
		PlanAdvanced: 100,
		PlanPremium:  500,
	})
}

// Quota returns the daily allowance for p. Unknown plans get 0.
func (c PlanCatalog) Quota(p Plan) int {
	return c.quotas[p]
}

// Has reports whether p is a plan users may be moved to.
func (c PlanCatalog) Has(p Plan) bool {
	_, ok := c.quotas[p]
	return ok
}
