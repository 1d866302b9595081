package ring

// twoSlot is a two-entry ring retaining the newest and previous value of a
// filtered signal. The extractor keeps one for filtered_net_g; the previous
// filtered scroll position is held as a single value and no scroll-diff
// history is kept. Index 0 is the older value, index 1 the newest, matching
// spec §4.3's filtered_net_g_history[0]/[1].
type twoSlot struct {
	values [2]float64
	filled int
}

// push applies the coalescing rule from spec §4.3: if the incoming value
// equals the current newest value exactly, history is not shifted. This lets
// an isolated impact spike be detected even when the link delivers the same
// reading twice in a row.
func (h *twoSlot) push(v float64) {
	if h.filled > 0 && h.values[1] == v {
		return
	}
	h.values[0] = h.values[1]
	h.values[1] = v
	if h.filled < 2 {
		h.filled++
	}
}

func (h *twoSlot) newest() float64 { return h.values[1] }
func (h *twoSlot) oldest() float64 { return h.values[0] }

func (h *twoSlot) reset() {
	h.values = [2]float64{}
	h.filled = 0
}
