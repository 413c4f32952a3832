package tide

// Converter applies the affine transform Scale*x + Offset, e.g. a 4-20 mA
// sensor current to a water level.
//
// The transform is only linear when Offset is zero: in general
// Convert(a*x+b*y) != a*Convert(x) + b*Convert(y).
type Converter struct {
	Scale  float64 `json:"scale"`
	Offset float64 `json:"offset"`
}

// Convert maps a raw value to the derived quantity
func (c Converter) Convert(x float64) float64 {
	return c.Scale*x + c.Offset
}

// Invert maps a derived value back to the raw quantity
func (c Converter) Invert(y float64) (float64, error) {
	if c.Scale == 0 {
		return 0, &InvalidParameterError{
			Parameter: "unit_conversion.scale",
			Value:     c.Scale,
			Reason:    "a zero scale cannot be inverted",
		}
	}
	return (y - c.Offset) / c.Scale, nil
}

// Apply returns a new series with every value converted
func (c Converter) Apply(series Series) Series {
	converted := make(Series, len(series))
	for i, sample := range series {
		converted[i] = Sample{Time: sample.Time, Value: c.Convert(sample.Value)}
	}
	return converted
}
