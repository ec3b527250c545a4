package matching

import "testing"

func TestResetOverwritesAllFields(t *testing.T) {
	o := &Order{}
	o.Reset(1, GoodTillCancel, Buy, 100, 10)
	o.RemainingQty = 3
	o.level = &PriceLevel{}

	o.Reset(2, FillAndKill, Sell, 200, 20)
	if o.ID != 2 || o.Discipline != FillAndKill || o.Side != Sell || o.Price != 200 {
		t.Errorf("unexpected fields after reset: %+v", o)
	}
	if o.InitialQty != 20 || o.RemainingQty != 20 {
		t.Errorf("expected qty fields reset to 20, got initial=%d remaining=%d", o.InitialQty, o.RemainingQty)
	}
	if o.Level() != nil {
		t.Error("expected level cleared by reset")
	}
}

func TestFilledReportsZeroRemaining(t *testing.T) {
	o := &Order{}
	o.Reset(1, GoodTillCancel, Buy, 100, 5)
	if o.Filled() {
		t.Error("expected not filled with remaining=5")
	}
	o.RemainingQty = 0
	if !o.Filled() {
		t.Error("expected filled with remaining=0")
	}
}
