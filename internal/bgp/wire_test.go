package bgp

import "testing"

func TestEncodeDecode_Update_RoundTrip(t *testing.T) {
	msg := UpdateMessage{
		Prefix:    "10.0.2.0/24",
		ASPath:    []int{2, 1},
		NextHop:   "10.0.2.2",
		LocalPref: 150,
	}
	data, err := Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := decoded.(UpdateMessage)
	if !ok {
		t.Fatalf("expected UpdateMessage, got %T", decoded)
	}
	if got.Prefix != msg.Prefix || got.NextHop != msg.NextHop || got.LocalPref != msg.LocalPref {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, msg)
	}
	if len(got.ASPath) != 2 || got.ASPath[0] != 2 || got.ASPath[1] != 1 {
		t.Fatalf("AS_PATH round trip mismatch: got %v", got.ASPath)
	}
}

func TestEncodeDecode_Withdraw_RoundTrip(t *testing.T) {
	msg := UpdateMessage{Withdraw: true, Prefix: "10.0.3.0/24"}
	data, err := Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := decoded.(UpdateMessage)
	if !got.Withdraw || got.Prefix != msg.Prefix {
		t.Fatalf("withdraw round trip mismatch: got %+v", got)
	}
}

func TestEncodeDecode_Open_RoundTrip(t *testing.T) {
	msg := OpenMessage{ASNumber: 65001, BGPID: 0x0a000101}
	data, err := Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := decoded.(OpenMessage)
	if got.ASNumber != msg.ASNumber || got.BGPID != msg.BGPID {
		t.Fatalf("open round trip mismatch: got %+v, want %+v", got, msg)
	}
}

func TestDecode_TruncatedMessage(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error decoding truncated message")
	}
}
