package realtime

import (
	"fmt"
	"sync"
)

// RecipientKey builds the directory key for a recipient. Notifications use a
// polymorphic recipient (user, company or admin), so the key is scoped by kind.
func RecipientKey(kind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}

// Directory maps a recipient key to the address of its current live
// connection. Entries exist only while a connection is open; the whole map is
// process-local and rebuilt from nothing on restart.
//
// A recipient has at most one address. Re-registering overwrites the previous
// entry (last write wins), which covers reconnects without an explicit
// cleanup of the old connection.
type Directory struct {
	mu          sync.RWMutex
	byRecipient map[string]string
	byAddress   map[string]string
}

func NewDirectory() *Directory {
	return &Directory{
		byRecipient: make(map[string]string),
		byAddress:   make(map[string]string),
	}
}

// Register upserts the address for a recipient.
func (d *Directory) Register(recipientKey, address string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.byRecipient[recipientKey]; ok {
		delete(d.byAddress, old)
	}
	d.byRecipient[recipientKey] = address
	d.byAddress[address] = recipientKey
}

// Unregister removes the entry for a recipient (explicit logout).
func (d *Directory) Unregister(recipientKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if addr, ok := d.byRecipient[recipientKey]; ok {
		delete(d.byAddress, addr)
		delete(d.byRecipient, recipientKey)
	}
}

// UnregisterAddress removes the entry holding the given address. Connection
// close events carry only the address, so this is a reverse lookup. If the
// recipient has since reconnected under a new address, the stale close is a
// no-op.
func (d *Directory) UnregisterAddress(address string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if key, ok := d.byAddress[address]; ok {
		if d.byRecipient[key] == address {
			delete(d.byRecipient, key)
		}
		delete(d.byAddress, address)
	}
}

// Lookup returns the live address for a recipient, if any.
func (d *Directory) Lookup(recipientKey string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	addr, ok := d.byRecipient[recipientKey]
	return addr, ok
}
