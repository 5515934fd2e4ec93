package flat

// Params carries named physical parameters (wheelbase, masses, gains) into
// the user-supplied flat maps. A nil Params is valid and yields defaults.
type Params map[string]float64

// Get returns the named parameter, or def when absent.
func (p Params) Get(name string, def float64) float64 {
	if p == nil {
		return def
	}
	if v, ok := p[name]; ok {
		return v
	}
	return def
}
