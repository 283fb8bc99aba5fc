package service

import (
	"context"
	"sync"
)

// CardReader is the interface to the physical NFC hardware. The core
// treats the radio protocol as opaque: it reads a card identifier, writes
// one, or erases the tag. Erasing is only ever attempted after the token
// registry's safety check passes.
type CardReader interface {
	ReadCardID(ctx context.Context) (string, error)
	WriteCardID(ctx context.Context, cardID string) error
	ClearTag(ctx context.Context, cardID string) error
}

// SimulatedCardReader is an in-memory CardReader for development and
// testing. Writes and clears always succeed.
type SimulatedCardReader struct {
	mu     sync.Mutex
	lastID string
}

// NewSimulatedCardReader creates a new SimulatedCardReader.
func NewSimulatedCardReader() *SimulatedCardReader {
	return &SimulatedCardReader{}
}

// ReadCardID returns the last written card ID, or empty when no tag is
// present.
func (r *SimulatedCardReader) ReadCardID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastID, nil
}

// WriteCardID simulates writing an ID to the tag.
func (r *SimulatedCardReader) WriteCardID(ctx context.Context, cardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID = cardID
	return nil
}

// ClearTag simulates erasing the tag.
func (r *SimulatedCardReader) ClearTag(ctx context.Context, cardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastID == cardID {
		r.lastID = ""
	}
	return nil
}

var _ CardReader = (*SimulatedCardReader)(nil)
