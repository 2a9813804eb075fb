package audioio

import "testing"

func TestRingWriteReadRoundTrip(t *testing.T) {
	r := NewRing(16)
	n := r.Write([]byte{1, 2, 3, 4})
	if n != 4 {
		t.Fatalf("Write returned %d, want 4", n)
	}

	buf := make([]byte, 4)
	got := r.Read(buf)
	if got != 4 {
		t.Fatalf("Read returned %d, want 4", got)
	}
	for i, v := range []byte{1, 2, 3, 4} {
		if buf[i] != v {
			t.Errorf("buf[%d] = %d, want %d", i, buf[i], v)
		}
	}
}

func TestRingUnderrunZeroFillsRemainder(t *testing.T) {
	r := NewRing(16)
	r.Write([]byte{9, 9})

	buf := make([]byte, 6)
	got := r.Read(buf)
	if got != 2 {
		t.Fatalf("Read returned %d real bytes, want 2", got)
	}
	for i := 2; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Errorf("buf[%d] = %d, want 0 (silence padding)", i, buf[i])
		}
	}
}

func TestRingOverrunDropsExcessBytes(t *testing.T) {
	r := NewRing(4)
	n := r.Write([]byte{1, 2, 3, 4, 5, 6})
	if n != 4 {
		t.Errorf("Write returned %d, want 4 (capacity-limited)", n)
	}
	if buffered := r.Buffered(); buffered != 4 {
		t.Errorf("Buffered = %d, want 4", buffered)
	}
}

func TestRingBufferedTracksWriteMinusRead(t *testing.T) {
	r := NewRing(16)
	r.Write([]byte{1, 2, 3, 4, 5})
	if b := r.Buffered(); b != 5 {
		t.Errorf("Buffered after write = %d, want 5", b)
	}
	r.Read(make([]byte, 2))
	if b := r.Buffered(); b != 3 {
		t.Errorf("Buffered after read = %d, want 3", b)
	}
}

func TestRingWrapsAroundCapacity(t *testing.T) {
	r := NewRing(4)
	r.Write([]byte{1, 2, 3, 4})
	r.Read(make([]byte, 3)) // readPos now 3, 1 byte buffered
	r.Write([]byte{5, 6})   // wraps: writes at index 0 and 1 (mod 4... writePos 4,5 mod4 = 0,1)

	out := make([]byte, 3)
	n := r.Read(out)
	if n != 3 {
		t.Fatalf("Read returned %d, want 3", n)
	}
	want := []byte{4, 5, 6}
	for i, v := range want {
		if out[i] != v {
			t.Errorf("out[%d] = %d, want %d", i, out[i], v)
		}
	}
}
