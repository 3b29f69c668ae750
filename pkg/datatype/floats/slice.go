package floats

import "math"

type Slice []float64

func New(a ...float64) Slice {
	return Slice(a)
}

func (s *Slice) Push(v float64) {
	*s = append(*s, v)
}

func (s Slice) Length() int {
	return len(s)
}

// Last returns the tail value, or 0.0 for an empty slice.
func (s Slice) Last() float64 {
	if len(s) == 0 {
		return 0.0
	}
	return s[len(s)-1]
}

// Index references the i-th value counting backward from the tail.
func (s Slice) Index(i int) float64 {
	if len(s)-i-1 < 0 {
		return 0.0
	}
	return s[len(s)-i-1]
}

func (s Slice) Sum() (sum float64) {
	for _, v := range s {
		sum += v
	}
	return sum
}

func (s Slice) Mean() (mean float64) {
	length := len(s)
	if length == 0 {
		return 0.0
	}
	return s.Sum() / float64(length)
}

func (s Slice) Min() float64 {
	m := math.Inf(1)
	for _, v := range s {
		m = math.Min(m, v)
	}
	return m
}

func (s Slice) Max() float64 {
	m := math.Inf(-1)
	for _, v := range s {
		m = math.Max(m, v)
	}
	return m
}

func (s Slice) Add(b Slice) (c Slice) {
	c = make(Slice, len(s))
	for i, v := range s {
		c[i] = v + b[i]
	}
	return c
}

func (s Slice) Sub(b Slice) (c Slice) {
	c = make(Slice, len(s))
	for i, v := range s {
		c[i] = v - b[i]
	}
	return c
}

func (s Slice) Mul(b Slice) (c Slice) {
	c = make(Slice, len(s))
	for i, v := range s {
		c[i] = v * b[i]
	}
	return c
}

func (s Slice) Div(b Slice) (c Slice) {
	c = make(Slice, len(s))
	for i, v := range s {
		c[i] = v / b[i]
	}
	return c
}

// Diff returns the drift-1 difference series; the first element is always 0.
func (s Slice) Diff() (c Slice) {
	c = make(Slice, len(s))
	for i, v := range s {
		if i == 0 {
			continue
		}
		c[i] = v - s[i-1]
	}
	return c
}

func (s Slice) PositiveValuesOrZero() (c Slice) {
	c = make(Slice, len(s))
	for i, v := range s {
		c[i] = math.Max(v, 0)
	}
	return c
}

func (s Slice) NegativeValuesOrZero() (c Slice) {
	c = make(Slice, len(s))
	for i, v := range s {
		c[i] = math.Min(v, 0)
	}
	return c
}

func (s Slice) Abs() (c Slice) {
	c = make(Slice, len(s))
	for i, v := range s {
		c[i] = math.Abs(v)
	}
	return c
}

func (s Slice) Truncate(size int) Slice {
	if len(s) <= size {
		return s
	}
	return s[len(s)-size:]
}

// Tail returns the last n elements as a copy.
func (s Slice) Tail(n int) Slice {
	length := len(s)
	if length <= n {
		out := make(Slice, length)
		copy(out, s)
		return out
	}
	out := make(Slice, n)
	copy(out, s[length-n:])
	return out
}

func (s Slice) Copy() Slice {
	out := make(Slice, len(s))
	copy(out, s)
	return out
}

// Round rounds every element to the given number of fractional digits.
func (s Slice) Round(digits int) (c Slice) {
	pow := math.Pow(10, float64(digits))
	c = make(Slice, len(s))
	for i, v := range s {
		c[i] = math.Round(v*pow) / pow
	}
	return c
}
