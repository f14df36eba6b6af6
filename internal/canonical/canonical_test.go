package canonical

import (
	"bytes"
	"testing"

	"packsync/internal/domain"
)

func TestEncodeDeterministic(t *testing.T) {
	fields := []Field{
		{Name: "id", Value: "pack-1"},
		{Name: "size", Value: int64(42)},
		{Name: "payload", Value: []byte{0x01, 0x02}},
	}
	a, err := Encode(fields)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode(fields)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("same fields must encode identically")
	}
}

func TestEncodeDistinguishesTypes(t *testing.T) {
	// A string and a byte slice with identical content must not collide.
	a, err := Encode([]Field{{Name: "v", Value: "abc"}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode([]Field{{Name: "v", Value: []byte("abc")}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("string and bytes values must encode differently")
	}
}

func TestEncodeDistinguishesFieldBoundaries(t *testing.T) {
	// "ab"+"c" vs "a"+"bc" across two fields must differ.
	a, err := Encode([]Field{{Name: "x", Value: "ab"}, {Name: "y", Value: "c"}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode([]Field{{Name: "x", Value: "a"}, {Name: "y", Value: "bc"}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("field boundaries must be unambiguous")
	}
}

func TestEncodeRejectsUnsupportedType(t *testing.T) {
	if _, err := Encode([]Field{{Name: "v", Value: 3.14}}); err == nil {
		t.Fatal("float values must be rejected")
	}
}

func TestPackSigningBytesStable(t *testing.T) {
	p := PackSigning{
		PackID:    "P",
		SHA256:    domain.DigestOf([]byte("blob")),
		Size:      4,
		KeyID:     "K1",
		CreatedAt: 1700000000000,
	}
	a, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	b, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("pack tuple encoding must be stable")
	}
}

func TestMessageSigningIDChangesWithNonce(t *testing.T) {
	m := MessageSigning{
		DocID:   "d1",
		DocHash: domain.DigestOf([]byte("delta")),
		TS:      1700000000000,
		Topic:   "topic-a",
		Nonce:   bytes.Repeat([]byte{0x11}, domain.NonceSize),
	}
	id1, err := m.ID()
	if err != nil {
		t.Fatalf("ID: %v", err)
	}

	m.Nonce = bytes.Repeat([]byte{0x22}, domain.NonceSize)
	id2, err := m.ID()
	if err != nil {
		t.Fatalf("ID: %v", err)
	}
	if id1 == id2 {
		t.Fatal("a re-signed retransmission with a new nonce must get a new id")
	}
}

func TestMessageSigningIDCoversTopic(t *testing.T) {
	m := MessageSigning{
		DocID:   "d1",
		DocHash: domain.DigestOf([]byte("delta")),
		TS:      1700000000000,
		Topic:   "topic-a",
		Nonce:   bytes.Repeat([]byte{0x11}, domain.NonceSize),
	}
	id1, err := m.ID()
	if err != nil {
		t.Fatalf("ID: %v", err)
	}
	m.Topic = "topic-b"
	id2, err := m.ID()
	if err != nil {
		t.Fatalf("ID: %v", err)
	}
	if id1 == id2 {
		t.Fatal("topic must be bound into the message id")
	}
}
