package session

// Identity resolution policy: the stable item id always wins over the
// positional output index, in every handler. Output indices are only unique
// within one response epoch, so both derived maps are discarded whenever a
// new response begins.

// resolve maps (itemID, outputIndex) to the transcript position of the
// owning output message. The id lookup is tried first; the index lookup is
// the fallback. Callers must create a placeholder when neither resolves.
func (s *Session) resolve(itemID string, outputIndex *int) (int, bool) {
	if itemID != "" {
		if pos, ok := s.byID[itemID]; ok {
			return pos, true
		}
	}
	if outputIndex != nil {
		if pos, ok := s.byIndex[*outputIndex]; ok {
			return pos, true
		}
	}
	return 0, false
}

// insertOutput places a newly-discovered output message at the smallest
// transcript position past every input message, past every entry of earlier
// response epochs, and past every output message of the current epoch with a
// strictly smaller output index. Output messages therefore stay sorted
// ascending by output index within their epoch no matter the arrival order of
// their events, and epochs keep chronological order. Returns the insertion
// position.
func (s *Session) insertOutput(om *OutputMessage) int {
	// Past earlier epochs and every input message first, then past
	// smaller-index outputs.
	pos := s.epochStart
	for i, m := range s.transcript {
		if m.Input != nil && i+1 > pos {
			pos = i + 1
		}
	}
	for pos < len(s.transcript) {
		m := s.transcript[pos]
		if m.Output != nil && m.Output.OutputIndex < om.OutputIndex {
			pos++
			continue
		}
		break
	}

	s.transcript = append(s.transcript, Message{})
	copy(s.transcript[pos+1:], s.transcript[pos:])
	s.transcript[pos] = Message{Output: om}

	// Every identity entry at or past the insertion point shifted right.
	s.shiftPositions(pos)

	s.byIndex[om.OutputIndex] = pos
	if id := om.Item.ItemID(); id != "" {
		s.byID[id] = pos
	}
	return pos
}

// appendInput places an input message at the end of the transcript and
// indexes its id, if it has one.
func (s *Session) appendInput(m Message) {
	s.transcript = append(s.transcript, m)
	if m.Input != nil && m.Input.ID != "" {
		s.byID[m.Input.ID] = len(s.transcript) - 1
	}
}

// shiftPositions renumbers both identity maps after an insertion at pos.
func (s *Session) shiftPositions(pos int) {
	for id, p := range s.byID {
		if p >= pos {
			s.byID[id] = p + 1
		}
	}
	for idx, p := range s.byIndex {
		if p >= pos {
			s.byIndex[idx] = p + 1
		}
	}
}

// reindexItem records an id the service assigned to an already-placed item.
// The previous id mapping (a generated placeholder id) is dropped; the
// positional mapping is untouched, so existing lookups keep resolving to the
// same transcript entry.
func (s *Session) reindexItem(oldID, newID string, pos int) {
	if oldID == newID {
		return
	}
	if oldID != "" {
		if p, ok := s.byID[oldID]; ok && p == pos {
			delete(s.byID, oldID)
		}
	}
	if newID != "" {
		s.byID[newID] = pos
	}
}

// resetIdentity discards both identity maps and marks the epoch boundary.
// Called on every new response epoch: output indices from the previous
// response no longer mean anything, and its transcript entries must stay
// ahead of the new epoch's.
func (s *Session) resetIdentity() {
	s.byID = make(map[string]int)
	s.byIndex = make(map[int]int)
	s.epochStart = len(s.transcript)
	for pos, m := range s.transcript {
		if m.Input != nil && m.Input.ID != "" {
			s.byID[m.Input.ID] = pos
		}
	}
}
