//go:build rp2040

package main

import (
	"machine"

	"quadfc/eeprom"
)

// FlashStore keeps the configuration image in the first block of the
// flash area after the firmware. Reads go through eeprom.Store.
type FlashStore struct {
	*eeprom.Store
}

func NewFlashStore() *FlashStore {
	return &FlashStore{Store: eeprom.NewStore(machine.Flash, 0)}
}

// WriteImage erases the config block and programs the image, padded to
// the flash write size with erased bytes
func (f *FlashStore) WriteImage(img []byte) error {
	size := machine.Flash.WriteBlockSize()
	padded := make([]byte, (int64(len(img))+size-1)/size*size)
	for i := range padded {
		padded[i] = 0xff
	}
	copy(padded, img)

	if err := machine.Flash.EraseBlocks(0, 1); err != nil {
		return err
	}
	_, err := machine.Flash.WriteAt(padded, 0)
	return err
}
