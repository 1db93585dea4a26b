package reedsolomon

import "errors"

// ErrReedSolomon indicates a Reed-Solomon decoding failure: either the
// syndromes proved the data uncorrectable, or more errors were present than
// the configured number of error-correction codewords can locate.
var ErrReedSolomon = errors.New("reedsolomon: decoding error")

// Decoder performs Reed-Solomon error correction decoding over a GenericGF.
type Decoder struct {
	field *GenericGF
}

// NewDecoder creates a new Decoder for the given field.
func NewDecoder(field *GenericGF) *Decoder {
	return &Decoder{field: field}
}

// syndromes evaluates the received codeword at each of the twoS generator
// powers used for error correction. Every syndrome is zero exactly when the
// codeword is a valid one (no errors to correct).
func (d *Decoder) syndromes(received []int, twoS int) (*GenericGFPoly, bool) {
	poly := newGenericGFPoly(d.field, received)
	coefficients := make([]int, twoS)
	clean := true
	for i := 0; i < twoS; i++ {
		v := poly.EvaluateAt(d.field.Exp(i + d.field.GeneratorBase()))
		coefficients[twoS-1-i] = v
		if v != 0 {
			clean = false
		}
	}
	return newGenericGFPoly(d.field, coefficients), clean
}

// Decode corrects errors in received in place and returns the number of
// errors corrected. twoS is the number of error-correction codewords.
func (d *Decoder) Decode(received []int, twoS int) (int, error) {
	syndrome, clean := d.syndromes(received, twoS)
	if clean {
		return 0, nil
	}

	sigma, omega, err := d.runEuclideanAlgorithm(d.field.BuildMonomial(twoS, 1), syndrome, twoS)
	if err != nil {
		return 0, err
	}
	locations, err := d.findErrorLocations(sigma)
	if err != nil {
		return 0, err
	}
	magnitudes := d.findErrorMagnitudes(omega, locations)
	for i, loc := range locations {
		position := len(received) - 1 - d.field.Log(loc)
		if position < 0 {
			return 0, ErrReedSolomon
		}
		received[position] = AddOrSubtract(received[position], magnitudes[i])
	}
	return len(locations), nil
}

// runEuclideanAlgorithm runs the extended Euclidean algorithm on (a, b) to
// degree threshold rDegreeThreshold, returning the error locator polynomial
// sigma and error evaluator polynomial omega used to solve the
// Berlekamp-Welch/Forney system.
func (d *Decoder) runEuclideanAlgorithm(a, b *GenericGFPoly, rDegreeThreshold int) (sigma, omega *GenericGFPoly, err error) {
	if a.Degree() < b.Degree() {
		a, b = b, a
	}

	rLast, r := a, b
	tLast, t := d.field.Zero(), d.field.One()

	for 2*r.Degree() >= rDegreeThreshold {
		rLastLast, tLastLast := rLast, tLast
		rLast, tLast = r, t

		if rLast.IsZero() {
			return nil, nil, ErrReedSolomon
		}
		r = rLastLast
		q := d.field.Zero()
		leadInverse := d.field.Inverse(rLast.GetCoefficient(rLast.Degree()))
		for r.Degree() >= rLast.Degree() && !r.IsZero() {
			shift := r.Degree() - rLast.Degree()
			scale := d.field.Multiply(r.GetCoefficient(r.Degree()), leadInverse)
			q = q.AddOrSubtractPoly(d.field.BuildMonomial(shift, scale))
			r = r.AddOrSubtractPoly(rLast.MultiplyByMonomial(shift, scale))
		}

		t = q.MultiplyPoly(tLast).AddOrSubtractPoly(tLastLast)

		if r.Degree() >= rLast.Degree() {
			return nil, nil, ErrReedSolomon
		}
	}

	normalizeBy := t.GetCoefficient(0)
	if normalizeBy == 0 {
		return nil, nil, ErrReedSolomon
	}
	inverse := d.field.Inverse(normalizeBy)
	return t.MultiplyScalar(inverse), r.MultiplyScalar(inverse), nil
}

// findErrorLocations returns the reciprocals of sigma's roots: the field
// elements X_i at which the received codeword is wrong. Chien search (a
// brute-force scan of every nonzero field element) finds the roots.
func (d *Decoder) findErrorLocations(sigma *GenericGFPoly) ([]int, error) {
	numErrors := sigma.Degree()
	if numErrors == 1 {
		return []int{sigma.GetCoefficient(1)}, nil
	}
	locations := make([]int, 0, numErrors)
	for i := 1; i < d.field.Size() && len(locations) < numErrors; i++ {
		if sigma.EvaluateAt(i) == 0 {
			locations = append(locations, d.field.Inverse(i))
		}
	}
	if len(locations) != numErrors {
		return nil, ErrReedSolomon
	}
	return locations, nil
}

// findErrorMagnitudes applies Forney's formula at each error location to
// recover how much each corrupted symbol needs to be XORed with.
func (d *Decoder) findErrorMagnitudes(omega *GenericGFPoly, locations []int) []int {
	magnitudes := make([]int, len(locations))
	for i, loc := range locations {
		xiInverse := d.field.Inverse(loc)
		denominator := 1
		for j, other := range locations {
			if i == j {
				continue
			}
			term := d.field.Multiply(other, xiInverse)
			// termPlus1 is term with its low bit flipped: GF(2^m) addition
			// of 1 is XOR, so "term + 1" just toggles bit 0.
			termPlus1 := term &^ 1
			if term&1 == 0 {
				termPlus1 = term | 1
			}
			denominator = d.field.Multiply(denominator, termPlus1)
		}
		magnitudes[i] = d.field.Multiply(omega.EvaluateAt(xiInverse), d.field.Inverse(denominator))
		if d.field.GeneratorBase() != 0 {
			magnitudes[i] = d.field.Multiply(magnitudes[i], xiInverse)
		}
	}
	return magnitudes
}
