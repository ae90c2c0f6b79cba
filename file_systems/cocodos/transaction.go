package cocodos

import "fmt"

// Transaction records enough of the image's state to undo an allocation: the
// whole granule map, the free granule count, the original data of every granule
// claimed in the transaction, and the directory slot being filled in.
//
// All changes are made directly to the live image. [Transaction.Rollback]
// restores the recorded state; [Transaction.Commit] discards it.
type Transaction struct {
	image        *Image
	granuleMap   [TotalGranules]byte
	freeGranules uint
	slot         int
	claimed      []Granule
	originalData map[Granule][]byte
	finished     bool
}

// Begin starts a transaction over the granule map.
func (image *Image) Begin() *Transaction {
	tx := &Transaction{
		image:        image,
		freeGranules: image.freeGranules,
		slot:         -1,
		originalData: make(map[Granule][]byte),
	}
	copy(tx.granuleMap[:], image.granuleMap())
	return tx
}

// ClaimSlot records `slot` as the directory entry being created. It's reset to
// free on rollback. The slot must be free when it's claimed.
func (tx *Transaction) ClaimSlot(slot int) {
	tx.slot = slot
}

// Slot returns the claimed directory slot, or -1 if none has been claimed.
func (tx *Transaction) Slot() int {
	return tx.slot
}

// Claimed returns the granules allocated so far, in allocation order.
func (tx *Transaction) Claimed() []Granule {
	return tx.claimed
}

// AllocateGranule claims the first free granule at or after `start`, wrapping
// around the end of the granule map. The granule is marked provisionally
// allocated and the free count is decremented.
func (tx *Transaction) AllocateGranule(start Granule) (Granule, error) {
	image := tx.image
	g := uint(start) % TotalGranules
	for i := 0; i < TotalGranules; i++ {
		if image.MapEntry(Granule(g)) == FreeEntry {
			claimed := Granule(g)
			tx.originalData[claimed] = image.GranuleData(claimed)
			image.SetMapEntry(claimed, provisionalEntry)
			image.freeGranules--
			tx.claimed = append(tx.claimed, claimed)
			return claimed, nil
		}
		g = (g + 1) % TotalGranules
	}
	return 0, ErrDiskFull.WithMessage(
		fmt.Sprintf("no free granules after allocating %d", len(tx.claimed)))
}

// Commit makes the transaction's changes permanent as far as the in-memory
// image is concerned. Nothing is persisted until the image is saved.
func (tx *Transaction) Commit() {
	tx.finished = true
	tx.originalData = nil
}

// Rollback restores the granule map, free granule count, granule contents and
// directory slot to what they were when the transaction began. Calling it after
// Commit or a previous Rollback does nothing.
func (tx *Transaction) Rollback() {
	if tx.finished {
		return
	}
	image := tx.image

	for g, data := range tx.originalData {
		copy(image.granuleData(g), data)
	}
	copy(image.granuleMap(), tx.granuleMap[:])
	image.freeGranules = tx.freeGranules
	if tx.slot >= 0 {
		image.FreeSlot(tx.slot)
	}
	tx.finished = true
}
