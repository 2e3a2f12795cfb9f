package market

// ContractType is the broker's contract type code, sent verbatim on the wire.
type ContractType string

const (
	Call ContractType = "CALL"
	Put  ContractType = "PUT"

	DigitEven ContractType = "DIGITEVEN"
	DigitOdd  ContractType = "DIGITODD"

	DigitOver  ContractType = "DIGITOVER"
	DigitUnder ContractType = "DIGITUNDER"

	DigitMatch ContractType = "DIGITMATCH"
	DigitDiff  ContractType = "DIGITDIFF"
)

// Family groups contract types that share a scoring model.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyDirectional
	FamilyParity
	FamilyOverUnder
	FamilyMatchDiff
)

// FamilyOf maps a contract type to its scoring family.
func FamilyOf(ct ContractType) Family {
	switch ct {
	case Call, Put:
		return FamilyDirectional
	case DigitEven, DigitOdd:
		return FamilyParity
	case DigitOver, DigitUnder:
		return FamilyOverUnder
	case DigitMatch, DigitDiff:
		return FamilyMatchDiff
	}
	return FamilyUnknown
}

// NeedsBarrier reports whether the contract type requires a barrier digit in
// the buy request.
func NeedsBarrier(ct ContractType) bool {
	switch FamilyOf(ct) {
	case FamilyOverUnder, FamilyMatchDiff:
		return true
	}
	return false
}
