package main

// storeStats is implemented by stores that can report their footprint.
type storeStats interface {
	Stats() (numKeys int, sizeInKB int)
}
