package bundle

const (
	ALPHA              int32 = 0
	DEPTH              int32 = 1
	SPOT_COLOR         int32 = 2
	SELECTION_MASK     int32 = 3
	BLACK              int32 = 4
	COLOR_FILTER_ARRAY int32 = 5
	THERMAL            int32 = 6
	NON_OPTIONAL       int32 = 15
	OPTIONAL           int32 = 16
)

func ValidateExtraChannel(ecType int32) bool {
	return (ecType >= ALPHA && ecType <= THERMAL) || ecType == NON_OPTIONAL || ecType == OPTIONAL
}

func ExtraChannelTypeName(ecType int32) string {
	switch ecType {
	case ALPHA:
		return "alpha"
	case DEPTH:
		return "depth"
	case SPOT_COLOR:
		return "spot"
	case SELECTION_MASK:
		return "selection"
	case BLACK:
		return "black"
	case COLOR_FILTER_ARRAY:
		return "cfa"
	case THERMAL:
		return "thermal"
	case NON_OPTIONAL:
		return "non-optional"
	case OPTIONAL:
		return "optional"
	}
	return "unknown"
}
