package router

// Price impact thresholds in basis points (bps)
const (
	PriceImpactLow      int64 = 100  // 1% - Low impact
	PriceImpactModerate int64 = 300  // 3% - Moderate impact
	PriceImpactHigh     int64 = 500  // 5% - High impact
	PriceImpactExtreme  int64 = 1000 // 10% - Extreme impact
)

// PriceImpactSeverity represents the severity level of price impact
type PriceImpactSeverity string

const (
	SeverityNone     PriceImpactSeverity = "none"     // < 1%
	SeverityLow      PriceImpactSeverity = "low"      // 1-3%
	SeverityModerate PriceImpactSeverity = "moderate" // 3-5%
	SeverityHigh     PriceImpactSeverity = "high"     // 5-10%
	SeverityExtreme  PriceImpactSeverity = "extreme"  // > 10%
)

func absBps(bps int64) int64 {
	if bps < 0 {
		if bps == -1<<63 {
			return 1<<63 - 1
		}
		return -bps
	}
	return bps
}

// GetPriceImpactSeverity classifies the magnitude of a signed impact.
func GetPriceImpactSeverity(priceImpactBps int64) PriceImpactSeverity {
	switch abs := absBps(priceImpactBps); {
	case abs < PriceImpactLow:
		return SeverityNone
	case abs < PriceImpactModerate:
		return SeverityLow
	case abs < PriceImpactHigh:
		return SeverityModerate
	case abs < PriceImpactExtreme:
		return SeverityHigh
	default:
		return SeverityExtreme
	}
}

// GetPriceImpactWarning returns a user-friendly warning message based on impact
func GetPriceImpactWarning(priceImpactBps int64) string {
	switch GetPriceImpactSeverity(priceImpactBps) {
	case SeverityLow:
		return "Low price impact"
	case SeverityModerate:
		return "Moderate price impact - consider reducing trade size"
	case SeverityHigh:
		return "High price impact - you may receive significantly less tokens"
	case SeverityExtreme:
		return "EXTREME price impact - this trade will severely impact the market price"
	default:
		return ""
	}
}
