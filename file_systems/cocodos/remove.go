package cocodos

// Remove deletes the file in a directory entry, freeing its granules and the
// directory slot.
//
// The whole chain is validated before anything is changed. If it's damaged,
// the image is left untouched and the returned error describes the defect.
func (image *Image) Remove(dirent *DirectoryEntry) error {
	granules, err := image.Chain(dirent.FirstGranule)
	if err != nil {
		return err
	}

	for _, g := range granules {
		image.SetMapEntry(g, FreeEntry)
		image.freeGranules++
	}
	image.FreeSlot(dirent.Slot)
	return nil
}

// RemoveName looks up a file by name and removes it.
func (image *Image) RemoveName(fullName string) error {
	dirent, err := image.LookupName(fullName)
	if err != nil {
		return err
	}
	return image.Remove(&dirent)
}
