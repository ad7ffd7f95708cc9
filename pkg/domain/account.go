package domain

import (
	"encoding/binary"
	"fmt"
)

// Account kinds, stored as the first byte of every non-system account's data.
// Decoding with the wrong kind is ErrBadDiscriminator, never a crash.
const (
	KindSystem       byte = 0x00 // balance-only account, no data
	KindTodoList     byte = 0x01
	KindListItem     byte = 0x02
	KindTreeNode     byte = 0x03
	KindMint         byte = 0x04
	KindTokenAccount byte = 0x05
)

// codecVersion is the second header byte. Bumped on any layout change.
const codecVersion byte = 0x01

// headerLen is the size of the kind+version prefix. Field offsets used by
// byte-match scans are relative to the start of the encoding, so the first
// payload byte sits at headerLen.
const headerLen = 2

// Byte offsets into stable encodings, for offset+byte-match scans.
const (
	TodoListOwnerOffset   = headerLen // TodoList.ListOwner
	ListItemCreatorOffset = headerLen // ListItem.Creator
	TokenMintOffset       = headerLen // TokenAccount.Mint
	TokenOwnerOffset      = headerLen + AddressLen // TokenAccount.Owner
)

// Account is the raw store record: an address, its balance, and an opaque
// encoded payload. System accounts carry no data.
type Account struct {
	Address  Address `json:"address"`
	Lamports uint64  `json:"lamports"`
	Data     []byte  `json:"data,omitempty"`
}

// Kind returns the discriminator byte, KindSystem for data-less accounts.
func (a *Account) Kind() byte {
	if len(a.Data) == 0 {
		return KindSystem
	}
	return a.Data[0]
}

// Clone returns a deep copy so store internals never alias caller memory.
func (a *Account) Clone() *Account {
	c := *a
	if a.Data != nil {
		c.Data = append([]byte(nil), a.Data...)
	}
	return &c
}

// KindName maps a discriminator to its wire name for readback.
func KindName(kind byte) string {
	switch kind {
	case KindSystem:
		return "system"
	case KindTodoList:
		return "todolist"
	case KindListItem:
		return "listitem"
	case KindTreeNode:
		return "treenode"
	case KindMint:
		return "mint"
	case KindTokenAccount:
		return "token"
	default:
		return "unknown"
	}
}

// AccountView is the decoded readback shape served to external callers.
type AccountView struct {
	Address  Address `json:"address"`
	Lamports uint64  `json:"lamports"`
	Kind     string  `json:"kind"`
	Fields   any     `json:"fields,omitempty"`
}

// --- codec helpers -------------------------------------------------------

type encoder struct {
	buf []byte
}

func newEncoder(kind byte) *encoder {
	return &encoder{buf: []byte{kind, codecVersion}}
}

func (e *encoder) bytes() []byte { return e.buf }

func (e *encoder) addr(a Address)  { e.buf = append(e.buf, a[:]...) }
func (e *encoder) byte(b byte)     { e.buf = append(e.buf, b) }
func (e *encoder) u16(v uint16)    { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *encoder) u64(v uint64)    { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }
func (e *encoder) bool(v bool) {
	if v {
		e.byte(1)
	} else {
		e.byte(0)
	}
}
func (e *encoder) str(s string) {
	e.u16(uint16(len(s)))
	e.buf = append(e.buf, s...)
}

type decoder struct {
	buf []byte
	off int
	err error
}

func newDecoder(data []byte, kind byte) *decoder {
	d := &decoder{buf: data}
	if len(data) < headerLen || data[0] != kind || data[1] != codecVersion {
		d.err = fmt.Errorf("decode %s: %w", KindName(kind), ErrBadDiscriminator)
	} else {
		d.off = headerLen
	}
	return d
}

func (d *decoder) fail(what string) {
	if d.err == nil {
		d.err = fmt.Errorf("decode: truncated %s at offset %d: %w", what, d.off, ErrBadDiscriminator)
	}
}

func (d *decoder) take(n int, what string) []byte {
	if d.err != nil {
		return nil
	}
	if d.off+n > len(d.buf) {
		d.fail(what)
		return nil
	}
	out := d.buf[d.off : d.off+n]
	d.off += n
	return out
}

func (d *decoder) addr() Address {
	var a Address
	copy(a[:], d.take(AddressLen, "address"))
	return a
}

func (d *decoder) byteVal() byte {
	b := d.take(1, "byte")
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) u16() uint16 {
	b := d.take(2, "u16")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *decoder) u64() uint64 {
	b := d.take(8, "u64")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) bool() bool { return d.byteVal() == 1 }

func (d *decoder) str() string {
	n := int(d.u16())
	return string(d.take(n, "string"))
}
