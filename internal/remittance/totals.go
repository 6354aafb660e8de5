package remittance

// RunningTotals are the counters of one encoding pass. A value is owned by a
// single Encode call and threaded through every emission step; steps return
// the updated totals instead of mutating shared state.
type RunningTotals struct {
	// Records counts every record of the file, headers and footers included.
	Records int

	// Payments counts receipts whose detail records have all been emitted.
	Payments int

	// Details counts the records of the national block emitted so far. The
	// national header is part of the block and is counted here too.
	Details int
}

// tally updates the totals after a record has been emitted.
type tally func(RunningTotals) RunningTotals

// countRecord counts a record outside the national block.
func countRecord(t RunningTotals) RunningTotals {
	t.Records++
	return t
}

// countBlockRecord counts a record of the national block.
func countBlockRecord(t RunningTotals) RunningTotals {
	t.Records++
	t.Details++
	return t
}

// countNone leaves the totals untouched.
func countNone(t RunningTotals) RunningTotals {
	return t
}

// paid closes a receipt.
func (t RunningTotals) paid() RunningTotals {
	t.Payments++
	return t
}

// nationalBlockCount is the record count written into the national footer:
// the block records emitted so far plus the footer itself.
func (t RunningTotals) nationalBlockCount() int {
	return t.Details + 1
}

// closed returns the totals with both footers counted ahead of the ordering
// footer write, which carries the final record count.
func (t RunningTotals) closed() RunningTotals {
	t.Records += 2
	return t
}
