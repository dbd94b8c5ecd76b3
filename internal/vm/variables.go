package vm

// Variables maps names to slots. A slot is allocated the first time a name
// is seen and is never reused until Reset; an allocated slot stays unset
// until something is stored in it.
type Variables struct {
	index map[string]int
	names []string
	slots []slot
}

type slot struct {
	value int64
	set   bool
}

func NewVariables() *Variables {
	return &Variables{index: map[string]int{}}
}

// Slot returns the slot for name, allocating one on first use.
func (v *Variables) Slot(name string) int {
	if n, ok := v.index[name]; ok {
		return n
	}
	n := len(v.slots)
	v.index[name] = n
	v.names = append(v.names, name)
	v.slots = append(v.slots, slot{})
	return n
}

func (v *Variables) Lookup(name string) (int, bool) {
	n, ok := v.index[name]
	return n, ok
}

// Get reports the value in slot n and whether it was ever set.
func (v *Variables) Get(n int) (int64, bool) {
	if n < 0 || n >= len(v.slots) {
		return 0, false
	}
	s := v.slots[n]
	return s.value, s.set
}

// Set stores into slot n. It reports false for a slot that was never
// allocated.
func (v *Variables) Set(n int, value int64) bool {
	if n < 0 || n >= len(v.slots) {
		return false
	}
	v.slots[n] = slot{value: value, set: true}
	return true
}

// Value looks a variable up by name.
func (v *Variables) Value(name string) (int64, bool) {
	n, ok := v.index[name]
	if !ok {
		return 0, false
	}
	return v.Get(n)
}

// Names lists variable names in slot order.
func (v *Variables) Names() []string {
	return append([]string(nil), v.names...)
}

func (v *Variables) Len() int { return len(v.slots) }

func (v *Variables) Reset() {
	v.index = map[string]int{}
	v.names = nil
	v.slots = nil
}
