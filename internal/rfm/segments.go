package rfm

import "custseg/pkg/contracts/domain"

// Segment maps a score triple to its segment. Rules are evaluated in order
// and the first match wins. At Risk and Cannot Lose Them sit behind About
// to Sleep and are never selected by this cascade.
func Segment(r, f, m int) domain.Segment {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return domain.SegmentChampions
	case r >= 3 && f >= 4 && m >= 3:
		return domain.SegmentLoyalCustomers
	case r >= 3 && f >= 2 && m >= 2:
		return domain.SegmentPotentialLoyalists
	case r >= 4 && f <= 2 && m <= 2:
		return domain.SegmentNewCustomers
	case r >= 3 && f <= 2 && m <= 2:
		return domain.SegmentPromising
	case r >= 2 && f >= 2 && m >= 2:
		return domain.SegmentNeedAttention
	case r <= 2 && f >= 2 && m >= 2:
		return domain.SegmentAboutToSleep
	case r <= 2 && f >= 3 && m >= 3:
		return domain.SegmentAtRisk
	case r <= 1 && f >= 4 && m >= 4:
		return domain.SegmentCannotLoseThem
	case r <= 2 && f <= 2 && m <= 2:
		return domain.SegmentHibernating
	default:
		return domain.SegmentLost
	}
}
