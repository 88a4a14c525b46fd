package entity

// Identity is the verified caller supplied by the excluded auth layer. The
// core trusts it as-is and performs no credential or role lookup of its own.
type Identity struct {
	AccountID uint64
	Admin     bool
}
