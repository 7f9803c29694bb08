package store

import "github.com/studiowebux/taxdesk/internal/types"

// Phase is the load state of the view: exactly one of Loading, LoadFailed or Ready
type Phase interface {
	isPhase()
}

// Loading is the phase until both initial fetches have settled
type Loading struct{}

// LoadFailed is the phase after either initial fetch failed
type LoadFailed struct {
	Message string
}

// Ready is the phase once records and countries are in the store
type Ready struct{}

func (Loading) isPhase()    {}
func (LoadFailed) isPhase() {}
func (Ready) isPhase()      {}

// EditState is the edit session: exactly one of EditClosed, EditOpen or EditSaving
type EditState interface {
	isEditState()
}

// EditClosed means no record is being edited
type EditClosed struct{}

// EditOpen is an editable session; Error is the last save failure, if any
type EditOpen struct {
	Record types.TaxRecord
	Error  string
}

// EditSaving is a session whose update call is in flight
type EditSaving struct {
	Record  types.TaxRecord
	Payload types.TaxRecord
}

func (EditClosed) isEditState() {}
func (EditOpen) isEditState()   {}
func (EditSaving) isEditState() {}
