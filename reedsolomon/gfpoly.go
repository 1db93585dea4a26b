package reedsolomon

// GenericGFPoly is an immutable polynomial whose coefficients are elements
// of a GenericGF, stored highest-degree first.
type GenericGFPoly struct {
	field        *GenericGF
	coefficients []int
}

// trimLeadingZeros drops high-degree zero coefficients so Degree() reflects
// the polynomial's true degree rather than however many terms the caller
// happened to pass in.
func trimLeadingZeros(coefficients []int) []int {
	if len(coefficients) <= 1 || coefficients[0] != 0 {
		return coefficients
	}
	firstNonZero := 1
	for firstNonZero < len(coefficients) && coefficients[firstNonZero] == 0 {
		firstNonZero++
	}
	if firstNonZero == len(coefficients) {
		return []int{0}
	}
	trimmed := make([]int, len(coefficients)-firstNonZero)
	copy(trimmed, coefficients[firstNonZero:])
	return trimmed
}

// newGenericGFPoly builds a polynomial over field from coefficients
// (highest degree first). Panics on an empty slice, which would have no
// well-defined degree.
func newGenericGFPoly(field *GenericGF, coefficients []int) *GenericGFPoly {
	if len(coefficients) == 0 {
		panic("reedsolomon: empty coefficients")
	}
	return &GenericGFPoly{field: field, coefficients: trimLeadingZeros(coefficients)}
}

// Coefficients returns the coefficient slice, highest degree first.
func (p *GenericGFPoly) Coefficients() []int {
	return p.coefficients
}

// Degree returns the polynomial's degree.
func (p *GenericGFPoly) Degree() int {
	return len(p.coefficients) - 1
}

// IsZero reports whether p is the zero polynomial.
func (p *GenericGFPoly) IsZero() bool {
	return p.coefficients[0] == 0
}

// GetCoefficient returns the coefficient of x^degree.
func (p *GenericGFPoly) GetCoefficient(degree int) int {
	return p.coefficients[len(p.coefficients)-1-degree]
}

// EvaluateAt computes p(a) via Horner's method, with the a==0 and a==1
// cases short-circuited since they need no field multiplication at all.
func (p *GenericGFPoly) EvaluateAt(a int) int {
	switch a {
	case 0:
		return p.GetCoefficient(0)
	case 1:
		sum := 0
		for _, c := range p.coefficients {
			sum = AddOrSubtract(sum, c)
		}
		return sum
	}
	acc := p.coefficients[0]
	for _, c := range p.coefficients[1:] {
		acc = AddOrSubtract(p.field.Multiply(a, acc), c)
	}
	return acc
}

// AddOrSubtractPoly returns p + other (addition and subtraction coincide in
// a characteristic-2 field).
func (p *GenericGFPoly) AddOrSubtractPoly(other *GenericGFPoly) *GenericGFPoly {
	if p.IsZero() {
		return other
	}
	if other.IsZero() {
		return p
	}

	shorter, longer := p.coefficients, other.coefficients
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	sum := make([]int, len(longer))
	pad := len(longer) - len(shorter)
	copy(sum, longer[:pad])
	for i := pad; i < len(longer); i++ {
		sum[i] = AddOrSubtract(shorter[i-pad], longer[i])
	}

	return newGenericGFPoly(p.field, sum)
}

// MultiplyPoly returns p * other.
func (p *GenericGFPoly) MultiplyPoly(other *GenericGFPoly) *GenericGFPoly {
	if p.IsZero() || other.IsZero() {
		return p.field.Zero()
	}
	a, b := p.coefficients, other.coefficients
	product := make([]int, len(a)+len(b)-1)
	for i, ac := range a {
		for j, bc := range b {
			product[i+j] = AddOrSubtract(product[i+j], p.field.Multiply(ac, bc))
		}
	}
	return newGenericGFPoly(p.field, product)
}

// MultiplyScalar returns p scaled by a single field element.
func (p *GenericGFPoly) MultiplyScalar(scalar int) *GenericGFPoly {
	switch scalar {
	case 0:
		return p.field.Zero()
	case 1:
		return p
	}
	scaled := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		scaled[i] = p.field.Multiply(c, scalar)
	}
	return newGenericGFPoly(p.field, scaled)
}

// MultiplyByMonomial returns p * (coefficient * x^degree).
func (p *GenericGFPoly) MultiplyByMonomial(degree, coefficient int) *GenericGFPoly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return p.field.Zero()
	}
	shifted := make([]int, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		shifted[i] = p.field.Multiply(c, coefficient)
	}
	return newGenericGFPoly(p.field, shifted)
}

// Divide performs polynomial long division over the field, returning
// [quotient, remainder] such that p == quotient*other + remainder.
func (p *GenericGFPoly) Divide(other *GenericGFPoly) [2]*GenericGFPoly {
	if other.IsZero() {
		panic("reedsolomon: divide by zero")
	}

	quotient := p.field.Zero()
	remainder := p

	leadInverse := p.field.Inverse(other.GetCoefficient(other.Degree()))

	for remainder.Degree() >= other.Degree() && !remainder.IsZero() {
		shift := remainder.Degree() - other.Degree()
		scale := p.field.Multiply(remainder.GetCoefficient(remainder.Degree()), leadInverse)
		quotient = quotient.AddOrSubtractPoly(p.field.BuildMonomial(shift, scale))
		remainder = remainder.AddOrSubtractPoly(other.MultiplyByMonomial(shift, scale))
	}

	return [2]*GenericGFPoly{quotient, remainder}
}
