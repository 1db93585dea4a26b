package decoder

import "fmt"

// ModulusPoly is an immutable polynomial over a ModulusGF, coefficients
// stored highest-degree first.
type ModulusPoly struct {
	field        *ModulusGF
	coefficients []int
}

// trimModulusLeadingZeros drops high-degree zero coefficients so that
// Degree() reports the polynomial's actual degree.
func trimModulusLeadingZeros(coefficients []int) []int {
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

// NewModulusPoly creates a ModulusPoly in field from coefficients
// (highest-degree first), stripping any leading zeros.
func NewModulusPoly(field *ModulusGF, coefficients []int) *ModulusPoly {
	if len(coefficients) == 0 {
		panic("decoder: empty coefficients")
	}
	return &ModulusPoly{field: field, coefficients: trimModulusLeadingZeros(coefficients)}
}

// Coefficients returns the coefficient slice, highest degree first.
func (p *ModulusPoly) Coefficients() []int {
	return p.coefficients
}

// Degree returns the polynomial's degree.
func (p *ModulusPoly) Degree() int {
	return len(p.coefficients) - 1
}

// IsZero reports whether p is the zero polynomial.
func (p *ModulusPoly) IsZero() bool {
	return p.coefficients[0] == 0
}

// GetCoefficient returns the coefficient of x^degree.
func (p *ModulusPoly) GetCoefficient(degree int) int {
	return p.coefficients[len(p.coefficients)-1-degree]
}

// EvaluateAt computes p(a) via Horner's method, short-circuiting the a==0
// and a==1 cases since neither needs a field multiplication.
func (p *ModulusPoly) EvaluateAt(a int) int {
	switch a {
	case 0:
		return p.GetCoefficient(0)
	case 1:
		sum := 0
		for _, c := range p.coefficients {
			sum = p.field.Add(sum, c)
		}
		return sum
	}
	acc := p.coefficients[0]
	for _, c := range p.coefficients[1:] {
		acc = p.field.Add(p.field.Multiply(a, acc), c)
	}
	return acc
}

func requireSameField(a, b *ModulusPoly) {
	if a.field != b.field {
		panic("decoder: ModulusPolys do not have same ModulusGF field")
	}
}

// Add returns p + other.
func (p *ModulusPoly) Add(other *ModulusPoly) *ModulusPoly {
	requireSameField(p, other)
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
		sum[i] = p.field.Add(shorter[i-pad], longer[i])
	}

	return NewModulusPoly(p.field, sum)
}

// Subtract returns p - other.
func (p *ModulusPoly) Subtract(other *ModulusPoly) *ModulusPoly {
	requireSameField(p, other)
	if other.IsZero() {
		return p
	}
	return p.Add(other.Negative())
}

// Multiply returns p * other.
func (p *ModulusPoly) Multiply(other *ModulusPoly) *ModulusPoly {
	requireSameField(p, other)
	if p.IsZero() || other.IsZero() {
		return p.field.Zero()
	}
	a, b := p.coefficients, other.coefficients
	product := make([]int, len(a)+len(b)-1)
	for i, ac := range a {
		for j, bc := range b {
			product[i+j] = p.field.Add(product[i+j], p.field.Multiply(ac, bc))
		}
	}
	return NewModulusPoly(p.field, product)
}

// Negative returns -p.
func (p *ModulusPoly) Negative() *ModulusPoly {
	negated := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		negated[i] = p.field.Subtract(0, c)
	}
	return NewModulusPoly(p.field, negated)
}

// MultiplyScalar returns p scaled by a single field element.
func (p *ModulusPoly) MultiplyScalar(scalar int) *ModulusPoly {
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
	return NewModulusPoly(p.field, scaled)
}

// MultiplyByMonomial returns p * (coefficient * x^degree).
func (p *ModulusPoly) MultiplyByMonomial(degree, coefficient int) *ModulusPoly {
	if degree < 0 {
		panic("decoder: negative degree")
	}
	if coefficient == 0 {
		return p.field.Zero()
	}
	shifted := make([]int, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		shifted[i] = p.field.Multiply(c, coefficient)
	}
	return NewModulusPoly(p.field, shifted)
}

// String renders the polynomial in human-readable "a*x^n + b*x + c" form.
func (p *ModulusPoly) String() string {
	var result string
	for degree := p.Degree(); degree >= 0; degree-- {
		coefficient := p.GetCoefficient(degree)
		if coefficient == 0 {
			continue
		}
		if coefficient < 0 {
			result += " - "
			coefficient = -coefficient
		} else if len(result) > 0 {
			result += " + "
		}
		if degree == 0 || coefficient != 1 {
			result += fmt.Sprintf("%d", coefficient)
		}
		switch degree {
		case 0:
		case 1:
			result += "x"
		default:
			result += fmt.Sprintf("x^%d", degree)
		}
	}
	return result
}
