package domain

// Mint is the definition account of a token. Non-fungible mints carry a
// supply of one.
type Mint struct {
	Authority Address `json:"authority"`
	Supply    uint64  `json:"supply"`
}

// Encode renders the stable binary form.
func (m *Mint) Encode() []byte {
	e := newEncoder(KindMint)
	e.addr(m.Authority)
	e.u64(m.Supply)
	return e.bytes()
}

// DecodeMint parses an encoded Mint.
func DecodeMint(data []byte) (*Mint, error) {
	d := newDecoder(data, KindMint)
	m := &Mint{
		Authority: d.addr(),
		Supply:    d.u64(),
	}
	if d.err != nil {
		return nil, d.err
	}
	return m, nil
}

// TokenAccount holds units of one mint for one owner. Custody transfer is a
// rewrite of Owner; the token itself never moves between accounts, so a mint
// has a single custodian at a time.
type TokenAccount struct {
	Mint   Address `json:"mint"`
	Owner  Address `json:"owner"`
	Amount uint64  `json:"amount"`
}

// Encode renders the stable binary form. Mint and Owner sit at
// TokenMintOffset and TokenOwnerOffset for custody scans.
func (t *TokenAccount) Encode() []byte {
	e := newEncoder(KindTokenAccount)
	e.addr(t.Mint)
	e.addr(t.Owner)
	e.u64(t.Amount)
	return e.bytes()
}

// DecodeTokenAccount parses an encoded TokenAccount.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	d := newDecoder(data, KindTokenAccount)
	t := &TokenAccount{
		Mint:   d.addr(),
		Owner:  d.addr(),
		Amount: d.u64(),
	}
	if d.err != nil {
		return nil, d.err
	}
	return t, nil
}
