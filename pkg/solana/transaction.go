package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

var (
	ErrTransactionTooLarge = errors.New("transaction exceeds max size")
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// Message is a legacy transaction message.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewLegacyTransaction compiles the instructions, in order, into a legacy
// transaction paid for by payer. Signatures are left empty until Sign is called.
func NewLegacyTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	m := compile(payer, instructions)
	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

func compile(payer ed25519.PublicKey, instructions []Instruction) Message {
	metas := []AccountMeta{{PublicKey: payer, IsSigner: true, IsWritable: true, isPayer: true}}
	for _, ix := range instructions {
		metas = append(metas, AccountMeta{PublicKey: ix.Program, isProgram: true})
		metas = append(metas, ix.Accounts...)
	}

	metas = filterUnique(metas)
	sort.Stable(SortableAccountMeta(metas))

	m := Message{Accounts: make([]ed25519.PublicKey, len(metas))}
	for i, meta := range metas {
		m.Accounts[i] = meta.PublicKey
		if len(meta.PublicKey) == 0 {
			m.Accounts[i] = make(ed25519.PublicKey, ed25519.PublicKeySize)
		}

		switch {
		case meta.IsSigner && meta.IsWritable:
			m.Header.NumSignatures++
		case meta.IsSigner:
			m.Header.NumSignatures++
			m.Header.NumReadonlySigned++
		case !meta.IsWritable:
			m.Header.NumReadOnly++
		}
	}

	// Instructions execute in the order given.
	m.Instructions = make([]CompiledInstruction, len(instructions))
	for i, ix := range instructions {
		compiled := CompiledInstruction{
			ProgramIndex: byte(metaIndex(metas, ix.Program)),
			Data:         ix.Data,
		}
		for _, a := range ix.Accounts {
			compiled.Accounts = append(compiled.Accounts, byte(metaIndex(metas, a.PublicKey)))
		}
		m.Instructions[i] = compiled
	}

	return m
}

// Signature returns the first (fee payer) signature, which identifies the
// transaction on chain.
func (t *Transaction) Signature() Signature {
	if len(t.Signatures) == 0 {
		return Signature{}
	}
	return t.Signatures[0]
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Sign signs the message with each of the provided keys. Every signer must be
// one of the message's signing accounts.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)
		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Errorf("signing account %s is not in the account list", base58.Encode(pub))
		}
		if index >= len(t.Signatures) {
			return errors.Errorf("signing account %s is not in the list of signers", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(s, messageBytes))
	}

	return nil
}

// IsSigned reports whether every required signature slot has been filled.
func (t *Transaction) IsSigned() bool {
	for _, s := range t.Signatures {
		if s == (Signature{}) {
			return false
		}
	}
	return len(t.Signatures) > 0
}

func (t *Transaction) String() string {
	var sb strings.Builder
	fmt.Fprintln(&sb, "Signatures:")
	for i, s := range t.Signatures {
		fmt.Fprintf(&sb, "  %d: %s\n", i, base58.Encode(s[:]))
	}

	h := t.Message.Header
	fmt.Fprintf(&sb, "Header: signatures=%d readonly_signed=%d readonly=%d\n", h.NumSignatures, h.NumReadonlySigned, h.NumReadOnly)
	fmt.Fprintf(&sb, "Blockhash: %s\n", base58.Encode(t.Message.RecentBlockhash[:]))

	fmt.Fprintln(&sb, "Accounts:")
	for i, a := range t.Message.Accounts {
		fmt.Fprintf(&sb, "  %d: %s\n", i, base58.Encode(a))
	}

	fmt.Fprintln(&sb, "Instructions:")
	for i, ix := range t.Message.Instructions {
		fmt.Fprintf(&sb, "  %d: program=%d accounts=%v data=%x\n", i, ix.ProgramIndex, ix.Accounts, ix.Data)
	}
	return sb.String()
}

// filterUnique merges repeated accounts, keeping the first position and the
// union of their permissions.
func filterUnique(metas []AccountMeta) []AccountMeta {
	unique := make([]AccountMeta, 0, len(metas))

outer:
	for _, meta := range metas {
		for j := range unique {
			if bytes.Equal(unique[j].PublicKey, meta.PublicKey) {
				unique[j].IsSigner = unique[j].IsSigner || meta.IsSigner
				unique[j].IsWritable = unique[j].IsWritable || meta.IsWritable
				unique[j].isPayer = unique[j].isPayer || meta.isPayer
				continue outer
			}
		}
		unique = append(unique, meta)
	}

	return unique
}

func metaIndex(metas []AccountMeta, key ed25519.PublicKey) int {
	for i := range metas {
		if bytes.Equal(metas[i].PublicKey, key) {
			return i
		}
	}
	return -1
}

func indexOf(keys []ed25519.PublicKey, key ed25519.PublicKey) int {
	for i := range keys {
		if bytes.Equal(keys[i], key) {
			return i
		}
	}
	return -1
}
