package dashboard

import "github.com/shopspring/decimal"

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func round2(v float64) float64 {
	return round(v, 2)
}

func toPtr[T any](v T) *T {
	return &v
}
