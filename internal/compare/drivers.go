package compare

import (
	"math"
	"sort"

	"github.com/EdvardGK/reduzer-summary/internal/aggregate"
	"github.com/EdvardGK/reduzer-summary/internal/model"
)

// Driver is a discipline's contribution to the change between two scenarios.
type Driver struct {
	DisciplineRow
	// ShareOfChange is the discipline difference as a percentage of the
	// scenario-level difference. It is a decomposition: values may exceed
	// 100 or be negative when disciplines partly cancel. Nil when the
	// scenario-level difference is 0.
	ShareOfChange *float64 `json:"share_of_change"`
}

// TopDrivers ranks disciplines by absolute difference in total GWP and
// returns the first n (all when n <= 0). Ties are broken by discipline code.
func TopDrivers(tree aggregate.Tree, base, target model.Scenario, n int) ([]Driver, bool) {
	bn, ok := tree[base]
	if !ok {
		return nil, false
	}
	tn, ok := tree[target]
	if !ok {
		return nil, false
	}

	overall := tn.Totals.WeightedTotal - bn.Totals.WeightedTotal
	rows := disciplineRows(bn, tn)
	sort.SliceStable(rows, func(i, j int) bool {
		return math.Abs(rows[i].Difference) > math.Abs(rows[j].Difference)
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}

	drivers := make([]Driver, 0, len(rows))
	for _, row := range rows {
		d := Driver{DisciplineRow: row}
		if overall != 0 {
			pct := row.Difference / overall * 100
			d.ShareOfChange = &pct
		}
		drivers = append(drivers, d)
	}
	return drivers, true
}
