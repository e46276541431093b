package enginebridge

// ABIVersion is the binary interface version of the bridge layer. A foreign
// caller must check this before trusting any internal field layout; a
// mismatch means the caller was built against a different bridge release.
const ABIVersion uint32 = 1

// Version returns the bridge ABI version number.
func Version() uint32 {
	return ABIVersion
}
