package journal

import "testing"

func TestPebbleStoreAppendAndScan(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenPebbleStore(dir)
	if err != nil {
		t.Fatalf("OpenPebbleStore: %v", err)
	}
	defer store.Close()

	for i := uint64(1); i <= 10; i++ {
		rec := &Record{Sequence: i, Kind: KindModify, Modify: ModifyPayload{ID: i, Price: int64(i), Qty: i}}
		store.SetNextSequence(i)
		if err := store.Append(Encode(rec)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	var seen []uint64
	if err := store.ScanFrom(5, func(rec *Record) error {
		seen = append(seen, rec.Sequence)
		return nil
	}); err != nil {
		t.Fatalf("ScanFrom: %v", err)
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 records from seq 5, got %d", len(seen))
	}
	for i, seq := range seen {
		if seq != uint64(5+i) {
			t.Errorf("out-of-order scan at index %d: got seq %d", i, seq)
		}
	}
}
