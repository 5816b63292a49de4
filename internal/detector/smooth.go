package detector

import "github.com/shopspring/decimal"

// smooth computes a centered moving average over the raw values. The window
// shrinks near the series boundaries to the values actually available, so no
// output slot is ever undefined. window must already be validated (odd, >= 1);
// window == 1 returns the input values unchanged.
func smooth(series []Point, window int) []decimal.Decimal {
	values := make([]decimal.Decimal, len(series))
	if window == 1 {
		for i, p := range series {
			values[i] = p.Value
		}
		return values
	}

	half := window / 2
	for i := range series {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(series)-1 {
			hi = len(series) - 1
		}

		sum := decimal.Zero
		for j := lo; j <= hi; j++ {
			sum = sum.Add(series[j].Value)
		}
		values[i] = sum.Div(decimal.NewFromInt(int64(hi - lo + 1)))
	}
	return values
}
