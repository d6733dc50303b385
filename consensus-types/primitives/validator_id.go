package primitives

// ValidatorID is the internal, database assigned identifier of a registered
// validator public key. Identifiers are handed out once and never reused.
type ValidatorID uint64
