package integrations

import (
	"fmt"
	"sort"
)

// ReaderDevice is an e-reader screen the EPUB export can size pages for.
type ReaderDevice struct {
	Name   string
	Width  uint32 // Screen width in pixels
	Height uint32 // Screen height in pixels
}

var ReaderDevices = map[string]ReaderDevice{
	"kindle":             {Name: "Kindle (basic)", Width: 600, Height: 800},
	"kindle-dx":          {Name: "Kindle DX", Width: 824, Height: 1200},
	"kindle-paperwhite":  {Name: "Kindle Paperwhite", Width: 1072, Height: 1448},
	"kindle-paperwhite5": {Name: "Kindle Paperwhite 5", Width: 1236, Height: 1648},
	"kindle-oasis":       {Name: "Kindle Oasis", Width: 1264, Height: 1680},
	"kindle-scribe":      {Name: "Kindle Scribe", Width: 1860, Height: 2480},
	"kobo-clara":         {Name: "Kobo Clara", Width: 1072, Height: 1448},
	"kobo-libra":         {Name: "Kobo Libra", Width: 1264, Height: 1680},
	"tablet":             {Name: "Tablet", Width: 1536, Height: 2048},
}

// LookupDevice returns the profile for id.
func LookupDevice(id string) (ReaderDevice, error) {
	device, ok := ReaderDevices[id]
	if !ok {
		return ReaderDevice{}, fmt.Errorf("unknown device %q (known: %v)", id, DeviceIDs())
	}
	return device, nil
}

// DeviceIDs lists the known profile ids in order.
func DeviceIDs() []string {
	ids := make([]string, 0, len(ReaderDevices))
	for id := range ReaderDevices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
