package contract

import (
	"encoding/hex"
	"strings"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"okinoko_ido/sdk"
)

// ProofSide says on which side the sibling sits at one proof step.
type ProofSide uint8

const (
	// ProofLeft hashes sibling ++ computed.
	ProofLeft ProofSide = 0
	// ProofRight hashes computed ++ sibling.
	ProofRight ProofSide = 1
)

// ProofStep is one (sibling hash, side) pair, bottom-up.
type ProofStep struct {
	Sibling string
	Side    ProofSide
}

func keccak256(parts ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// WhitelistLeaf is the string a bidder is whitelisted under. With a tier the
// membership is bound to that cap: "<address>_<tier>".
func WhitelistLeaf(bidder sdk.Address, tier *uint256.Int) string {
	if tier == nil {
		return bidder.String()
	}
	return bidder.String() + "_" + tier.Dec()
}

// computeRoot folds the proof over keccak(leaf) and returns the hex root.
func computeRoot(leaf string, proof []ProofStep) (string, error) {
	computed := keccak256([]byte(leaf))
	for i, step := range proof {
		sibling, err := hex.DecodeString(step.Sibling)
		if err != nil || len(sibling) != 32 {
			return "", ErrNotWhitelisted.With("malformed proof element %d", i)
		}
		switch step.Side {
		case ProofRight:
			computed = keccak256(computed, sibling)
		case ProofLeft:
			computed = keccak256(sibling, computed)
		default:
			return "", ErrNotWhitelisted.With("unknown proof side %d at %d", step.Side, i)
		}
	}
	return hex.EncodeToString(computed), nil
}

// VerifyProof fails closed: an empty root, a malformed step or any mismatch
// rejects the bidder.
func VerifyProof(root, leaf string, proof []ProofStep) error {
	if len(proof) > MaxProofLength {
		return ErrNotWhitelisted.With("proof too long")
	}
	want := strings.ToLower(strings.TrimPrefix(root, "0x"))
	if want == "" {
		return ErrNotWhitelisted.With("no merkle root configured")
	}
	got, err := computeRoot(leaf, proof)
	if err != nil {
		return err
	}
	if got != want {
		return ErrNotWhitelisted
	}
	return nil
}

// MerkleTree builds whitelist roots and proofs off-chain. Pairs are hashed
// left ++ right without sorting; an odd node is carried up unchanged.
type MerkleTree struct {
	levels [][][]byte
}

// NewMerkleTree hashes each leaf string and builds the tree bottom-up.
func NewMerkleTree(leaves []string) *MerkleTree {
	if len(leaves) == 0 {
		return &MerkleTree{}
	}
	level := make([][]byte, len(leaves))
	for i, l := range leaves {
		level[i] = keccak256([]byte(l))
	}
	t := &MerkleTree{levels: [][][]byte{level}}
	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, keccak256(level[i], level[i+1]))
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t
}

// Root returns the hex root, empty for an empty tree.
func (t *MerkleTree) Root() string {
	if len(t.levels) == 0 {
		return ""
	}
	top := t.levels[len(t.levels)-1]
	return hex.EncodeToString(top[0])
}

// Proof returns the steps for the leaf at index, or nil when out of range.
func (t *MerkleTree) Proof(index int) []ProofStep {
	if len(t.levels) == 0 || index < 0 || index >= len(t.levels[0]) {
		return nil
	}
	var proof []ProofStep
	for _, level := range t.levels[:len(t.levels)-1] {
		if index%2 == 0 {
			if index+1 < len(level) {
				proof = append(proof, ProofStep{Sibling: hex.EncodeToString(level[index+1]), Side: ProofRight})
			}
		} else {
			proof = append(proof, ProofStep{Sibling: hex.EncodeToString(level[index-1]), Side: ProofLeft})
		}
		index /= 2
	}
	return proof
}
