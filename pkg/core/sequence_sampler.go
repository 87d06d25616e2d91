package core

// SequenceSampler replays a fixed list of values in order, wrapping around when exhausted.
// It makes the branches of stochastic code reproducible in tests.
type SequenceSampler struct {
	values []float64
	next   int
}

// NewSequenceSampler creates a sampler that yields values cyclically.
// With no values it always yields 0.
func NewSequenceSampler(values ...float64) *SequenceSampler {
	return &SequenceSampler{values: values}
}

// Get1D returns the next value of the sequence
func (s *SequenceSampler) Get1D() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Get2D returns the next two values of the sequence
func (s *SequenceSampler) Get2D() Vec2 {
	x := s.Get1D()
	return NewVec2(x, s.Get1D())
}

// Get3D returns the next three values of the sequence
func (s *SequenceSampler) Get3D() Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	return NewVec3(x, y, s.Get1D())
}

// Draws returns how many scalar values have been consumed so far
func (s *SequenceSampler) Draws() int {
	return s.next
}
