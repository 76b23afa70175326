package contracts

// Value is an optional float64 used for every metric that can be undefined.
// 미정의(undefined)는 0과 구분되어야 함: 성장률/비율 계산 실패는 0이 아니라 결측.
type Value struct {
	Float float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Some returns a defined Value.
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// None returns an undefined Value.
func None() Value {
	return Value{}
}

// FromPtr converts a nullable pointer into a Value.
func FromPtr(p *float64) Value {
	if p == nil {
		return None()
	}
	return Some(*p)
}

// Or returns the value, or def when undefined.
func (v Value) Or(def float64) float64 {
	if !v.Valid {
		return def
	}
	return v.Float
}

// Ptr returns a nullable pointer for database writes.
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float
	return &f
}

// Positive reports whether the value is defined and strictly positive.
func (v Value) Positive() bool {
	return v.Valid && v.Float > 0
}

// Above reports whether the value is defined and strictly greater than x.
func (v Value) Above(x float64) bool {
	return v.Valid && v.Float > x
}

// AtLeast reports whether the value is defined and >= x.
func (v Value) AtLeast(x float64) bool {
	return v.Valid && v.Float >= x
}

// Below reports whether the value is defined and strictly less than x.
func (v Value) Below(x float64) bool {
	return v.Valid && v.Float < x
}

// Between reports whether the value is defined and within [lo, hi].
func (v Value) Between(lo, hi float64) bool {
	return v.Valid && v.Float >= lo && v.Float <= hi
}
