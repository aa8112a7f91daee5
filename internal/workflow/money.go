package workflow

import "math"

// Cents — сумма в минимальных единицах валюты; вся арифметика по деньгам идёт в них.
func Cents(v float64) int64 { return int64(math.Round(v * 100)) }

func FromCents(c int64) float64 { return float64(c) / 100 }
