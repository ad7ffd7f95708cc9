package domain

// TodoList is a bounty board owned by a single authority. Lines holds the
// addresses of the open items in insertion order, never exceeding Capacity.
type TodoList struct {
	ListOwner Address   `json:"list_owner"`
	Nonce     uint8     `json:"nonce"`
	Capacity  uint16    `json:"capacity"`
	Name      string    `json:"name"`
	Lines     []Address `json:"lines"`
}

// Encode renders the stable binary form. ListOwner sits at
// TodoListOwnerOffset so owner scans can byte-match it.
func (l *TodoList) Encode() []byte {
	e := newEncoder(KindTodoList)
	e.addr(l.ListOwner)
	e.byte(l.Nonce)
	e.u16(l.Capacity)
	e.str(l.Name)
	e.u16(uint16(len(l.Lines)))
	for _, line := range l.Lines {
		e.addr(line)
	}
	return e.bytes()
}

// DecodeTodoList parses an encoded TodoList, rejecting foreign kinds.
func DecodeTodoList(data []byte) (*TodoList, error) {
	d := newDecoder(data, KindTodoList)
	l := &TodoList{
		ListOwner: d.addr(),
		Nonce:     d.byteVal(),
		Capacity:  d.u16(),
		Name:      d.str(),
	}
	n := int(d.u16())
	for i := 0; i < n && d.err == nil; i++ {
		l.Lines = append(l.Lines, d.addr())
	}
	if d.err != nil {
		return nil, d.err
	}
	return l, nil
}

// Contains reports whether addr is one of the list's lines.
func (l *TodoList) Contains(addr Address) bool {
	for _, line := range l.Lines {
		if line == addr {
			return true
		}
	}
	return false
}

// Remove drops addr from the lines, preserving order of the rest.
func (l *TodoList) Remove(addr Address) {
	kept := l.Lines[:0]
	for _, line := range l.Lines {
		if line != addr {
			kept = append(kept, line)
		}
	}
	l.Lines = kept
}

// ListItem is an escrowed bounty entry. The escrow itself is the lamport
// balance of the item's account; payout is gated on both finish flags.
type ListItem struct {
	Creator           Address `json:"creator"`
	CreatorFinished   bool    `json:"creator_finished"`
	ListOwnerFinished bool    `json:"list_owner_finished"`
	Name              string  `json:"name"`
}

// Encode renders the stable binary form. Creator sits at
// ListItemCreatorOffset.
func (i *ListItem) Encode() []byte {
	e := newEncoder(KindListItem)
	e.addr(i.Creator)
	e.bool(i.CreatorFinished)
	e.bool(i.ListOwnerFinished)
	e.str(i.Name)
	return e.bytes()
}

// DecodeListItem parses an encoded ListItem.
func DecodeListItem(data []byte) (*ListItem, error) {
	d := newDecoder(data, KindListItem)
	i := &ListItem{
		Creator:           d.addr(),
		CreatorFinished:   d.bool(),
		ListOwnerFinished: d.bool(),
		Name:              d.str(),
	}
	if d.err != nil {
		return nil, d.err
	}
	return i, nil
}
