package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-echo/pkg/solana/shortvec"
)

// versionPrefixMask marks a versioned (non-legacy) message in its first byte.
const versionPrefixMask = 0x80

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (b Blockhash) String() string {
	return base58.Encode(b[:])
}

// Marshal returns the wire encoding of the transaction. Lengths that do not
// fit a compact-u16 produce an encoding the runtime rejects, which callers
// catch through the MaxTransactionSize check.
func (t Transaction) Marshal() []byte {
	var b bytes.Buffer

	_, _ = shortvec.EncodeLen(&b, len(t.Signatures))
	for i := range t.Signatures {
		b.Write(t.Signatures[i][:])
	}
	b.Write(t.Message.Marshal())

	return b.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	d := &decoder{r: bytes.NewReader(b)}

	t.Signatures = make([]Signature, d.length("signature count"))
	for i := range t.Signatures {
		d.read(t.Signatures[i][:], "signature")
	}
	if d.err != nil {
		return d.err
	}

	rest := make([]byte, d.r.Len())
	_, _ = d.r.Read(rest)
	return t.Message.Unmarshal(rest)
}

func (m Message) Marshal() []byte {
	var b bytes.Buffer

	b.Write([]byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly})

	_, _ = shortvec.EncodeLen(&b, len(m.Accounts))
	for _, a := range m.Accounts {
		b.Write(a)
	}

	b.Write(m.RecentBlockhash[:])

	_, _ = shortvec.EncodeLen(&b, len(m.Instructions))
	for _, c := range m.Instructions {
		b.WriteByte(c.ProgramIndex)
		writeCompact(&b, c.Accounts)
		writeCompact(&b, c.Data)
	}

	return b.Bytes()
}

func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&versionPrefixMask != 0 {
		return errors.New("versioned messages not supported")
	}

	d := &decoder{r: bytes.NewReader(b)}

	m.Header.NumSignatures = d.readByte("num signatures")
	m.Header.NumReadonlySigned = d.readByte("num readonly signed")
	m.Header.NumReadOnly = d.readByte("num readonly")

	m.Accounts = make([]ed25519.PublicKey, d.length("account count"))
	for i := range m.Accounts {
		m.Accounts[i] = make(ed25519.PublicKey, ed25519.PublicKeySize)
		d.read(m.Accounts[i], "account")
	}

	d.read(m.RecentBlockhash[:], "recent blockhash")

	m.Instructions = make([]CompiledInstruction, d.length("instruction count"))
	for i := range m.Instructions {
		c := &m.Instructions[i]
		c.ProgramIndex = d.readByte("program index")
		c.Accounts = d.compact("instruction accounts")
		c.Data = d.compact("instruction data")
		if d.err != nil {
			return errors.Wrapf(d.err, "instruction %d", i)
		}

		if int(c.ProgramIndex) >= len(m.Accounts) {
			return errors.Errorf("instruction %d: program index %d out of range", i, c.ProgramIndex)
		}
		for _, index := range c.Accounts {
			if int(index) >= len(m.Accounts) {
				return errors.Errorf("instruction %d: account index %d out of range", i, index)
			}
		}
	}

	return d.err
}

func writeCompact(b *bytes.Buffer, v []byte) {
	_, _ = shortvec.EncodeLen(b, len(v))
	b.Write(v)
}

// decoder reads wire fields, remembering the first failure so callers can
// check once after a run of reads.
type decoder struct {
	r   *bytes.Reader
	err error
}

func (d *decoder) fail(err error, field string) {
	if d.err == nil {
		d.err = errors.Wrapf(err, "failed to read %s", field)
	}
}

func (d *decoder) readByte(field string) byte {
	if d.err != nil {
		return 0
	}
	v, err := d.r.ReadByte()
	if err != nil {
		d.fail(err, field)
	}
	return v
}

func (d *decoder) length(field string) int {
	if d.err != nil {
		return 0
	}
	n, err := shortvec.DecodeLen(d.r)
	if err != nil {
		d.fail(err, field)
		return 0
	}
	// Every counted element occupies at least one byte.
	if n > d.r.Len() {
		d.fail(io.ErrUnexpectedEOF, field)
		return 0
	}
	return n
}

func (d *decoder) read(dst []byte, field string) {
	if d.err != nil {
		return
	}
	if _, err := io.ReadFull(d.r, dst); err != nil {
		d.fail(err, field)
	}
}

func (d *decoder) compact(field string) []byte {
	v := make([]byte, d.length(field))
	d.read(v, field)
	return v
}
