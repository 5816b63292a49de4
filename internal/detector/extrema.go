package detector

import "github.com/shopspring/decimal"

// locateExtrema scans the smoothed values for strict local minima and maxima
// within an index-based window of halfWindow points on each side, clipped at
// the series boundaries. Ties never qualify, so the two index sets are
// disjoint for any halfWindow > 0. With halfWindow == 0 the comparison set is
// empty and every index qualifies vacuously as both; callers resolve the
// resulting double labels at output time.
//
// The window is defined over row indices, not calendar days: gaps in the
// input series widen the effective day span of a window.
func locateExtrema(values []decimal.Decimal, halfWindow int) (minima, maxima []int) {
	// Below one full window no point is comparable against enough
	// neighbours to be meaningful; degrade to an empty candidate set.
	if len(values) < 2*halfWindow+1 {
		return nil, nil
	}

	for i := range values {
		lo := i - halfWindow
		if lo < 0 {
			lo = 0
		}
		hi := i + halfWindow
		if hi > len(values)-1 {
			hi = len(values) - 1
		}

		isMin, isMax := true, true
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			switch values[i].Cmp(values[j]) {
			case -1:
				isMax = false
			case 1:
				isMin = false
			default:
				isMin, isMax = false, false
			}
			if !isMin && !isMax {
				break
			}
		}

		if isMin {
			minima = append(minima, i)
		}
		if isMax {
			maxima = append(maxima, i)
		}
	}
	return minima, maxima
}
