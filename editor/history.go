package editor

import "richedit/document"

// snapshot is the editor state restored by undo and redo.
type snapshot struct {
	doc *document.Document
	sel document.Selection
}

// history holds undo and redo stacks of document snapshots.
type history struct {
	undo  []snapshot
	redo  []snapshot
	limit int // maximum undo depth, 0 = unlimited
}

// save records the state before a change. A new change invalidates redo.
func (h *history) save(s snapshot) {
	h.undo = append(h.undo, s)
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = h.redo[:0]
}

// back pops the previous state, pushing cur onto the redo stack.
func (h *history) back(cur snapshot) (snapshot, bool) {
	if len(h.undo) == 0 {
		return snapshot{}, false
	}
	h.redo = append(h.redo, cur)
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return last, true
}

// forward pops the next state, pushing cur onto the undo stack.
func (h *history) forward(cur snapshot) (snapshot, bool) {
	if len(h.redo) == 0 {
		return snapshot{}, false
	}
	h.undo = append(h.undo, cur)
	last := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return last, true
}

// each visits every stored document.
func (h *history) each(fn func(*document.Document)) {
	for _, s := range h.undo {
		fn(s.doc)
	}
	for _, s := range h.redo {
		fn(s.doc)
	}
}

func (h *history) clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}
