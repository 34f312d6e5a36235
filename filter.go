package undiff

// StateFilter narrows a reconstructed state snapshot. It receives a copy
// of the running document. Returning false redacts the snapshot entirely.
type StateFilter func(Document) (Document, bool)

// ActionFilter narrows an action snapshot. Returning false drops the action.
type ActionFilter func(ActionRecord) (ActionRecord, bool)

// IdentityState keeps every snapshot unchanged.
func IdentityState(doc Document) (Document, bool) {
	return doc, true
}

// IdentityAction keeps every action unchanged.
func IdentityAction(action ActionRecord) (ActionRecord, bool) {
	return action, true
}
