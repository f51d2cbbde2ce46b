package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Interaction rejections. Out-of-range and the two no-op combinations
	// are distinct so clients can differentiate feedback; none of them
	// mutate state.
	ErrOutOfRange = "E_OUT_OF_RANGE"
	ErrBadCombo   = "E_BAD_COMBO"
	ErrEmpty      = "E_EMPTY"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrOutOfRange:      {},
	ErrBadCombo:        {},
	ErrEmpty:           {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
