package session

import (
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Now()
	in := &Session{
		UserID:    "operator-17",
		Role:      "steward",
		EditToken: "tok_abc123",
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if out.UserID != in.UserID || out.Role != in.Role || out.EditToken != in.EditToken {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.CreatedAt != in.CreatedAt || out.ExpiresAt != in.ExpiresAt {
		t.Fatalf("timestamp mismatch: %+v", out)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	data, err := Encode(&Session{UserID: "u1"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data[0] = 99

	if _, err := Decode(data); err == nil {
		t.Fatal("expected version error")
	}
}

func TestDecodeRejectsTruncatedRecord(t *testing.T) {
	data, err := Encode(&Session{UserID: "u1", Role: "steward"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if _, err := Decode(data[:len(data)-3]); err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	data, err := Encode(&Session{UserID: "u1"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data = append(data, 0x00)

	if _, err := Decode(data); err == nil {
		t.Fatal("expected trailing bytes error")
	}
}

func TestEncodeRejectsOversizedFields(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	if _, err := Encode(&Session{UserID: string(long)}); err == nil {
		t.Fatal("expected oversized userID error")
	}
}
