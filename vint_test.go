package mkvdemux

import (
	"bytes"
	"testing"
)

// Scenario A: EBML header element id, raw mode.
func TestDecodeVIntRaw_EBMLHeaderID(t *testing.T) {
	data := []byte{0x1A, 0x45, 0xDF, 0xA3}
	value, width, err := decodeVIntRaw(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 0x1A45DFA3 {
		t.Errorf("value = %#x, want %#x", value, 0x1A45DFA3)
	}
	if width != 4 {
		t.Errorf("width = %d, want 4", width)
	}
}

// Scenario B and C: value-mode decode.
func TestDecodeVIntValue(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		wantValue uint64
		wantWidth int
	}{
		{"scenario B", []byte{0x82}, 2, 1},
		{"scenario C", []byte{0x40, 0x20}, 32, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, width, unknown, err := decodeVIntValue(tt.data)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if unknown {
				t.Fatalf("unexpected unknown-length sentinel")
			}
			if value != tt.wantValue {
				t.Errorf("value = %d, want %d", value, tt.wantValue)
			}
			if width != tt.wantWidth {
				t.Errorf("width = %d, want %d", width, tt.wantWidth)
			}
		})
	}
}

func TestDecodeVIntValue_UnknownSentinel(t *testing.T) {
	value, width, unknown, err := decodeVIntValue([]byte{0xFF})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if width != 1 {
		t.Fatalf("width = %d, want 1", width)
	}
	if !unknown {
		t.Errorf("expected unknown-length sentinel for all-ones width-1 value, got value=%d", value)
	}
}

func TestDecodeVInt_WidthZeroIsFormatError(t *testing.T) {
	_, _, err := decodeVIntRaw([]byte{0x00, 0xFF})
	if !IsRecoverable(err) {
		t.Fatalf("expected a recoverable format error, got %v", err)
	}
}

func TestDecodeVInt_TruncatedNeedsMoreData(t *testing.T) {
	_, _, err := decodeVIntRaw([]byte{0x10}) // width 4, only 1 byte present
	if err != errNeedMoreData {
		t.Fatalf("err = %v, want errNeedMoreData", err)
	}
}

// Property 1: VInt round-trip for every legal (value, width).
func TestVIntRoundTrip(t *testing.T) {
	for width := 1; width <= 8; width++ {
		max := unknownSizeSentinel(width) - 1
		values := []uint64{0, 1, max}
		if max > 10 {
			values = append(values, max/2)
		}
		for _, v := range values {
			encoded := encodeVInt(v, width)
			got, gotWidth, unknown, err := decodeVIntValue(encoded)
			if err != nil {
				t.Fatalf("width=%d value=%d: decode error: %v", width, v, err)
			}
			if unknown {
				t.Fatalf("width=%d value=%d: unexpectedly decoded as unknown-length", width, v)
			}
			if got != v || gotWidth != width {
				t.Errorf("width=%d value=%d: round-trip got (%d, width %d)", width, v, got, gotWidth)
			}
		}
	}
}

func TestEncodeVInt_SmallestWidth(t *testing.T) {
	got := encodeVInt(2, 0)
	want := []byte{0x82}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeVInt(2, 0) = % x, want % x", got, want)
	}
}

func TestDecodeVIntSigned(t *testing.T) {
	// width 1, bias = 2^6 - 1 = 63; encoded value 63 (0xBF) -> unbiased 0.
	encoded := encodeVInt(63, 1)
	got, width, err := decodeVIntSigned(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if width != 1 || got != 0 {
		t.Errorf("decodeVIntSigned = (%d, width %d), want (0, width 1)", got, width)
	}
}
