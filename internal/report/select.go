package report

// PickPreferred chooses the authoritative report between the current best
// candidate and a new one for the same child and day. A full report
// outranks a partial one regardless of recency; equal statuses fall back
// to the effective timestamp, with ties going to the candidate. Safe to
// use as a left-fold reducer over an unordered set of same-key records.
func PickPreferred(current, candidate *DailyReport) *DailyReport {
	if current == nil {
		return candidate
	}
	if candidate == nil {
		return current
	}

	if current.ReportStatus != candidate.ReportStatus {
		if candidate.ReportStatus == StatusFull {
			return candidate
		}
		return current
	}

	if candidate.EffectiveUnixMilli() >= current.EffectiveUnixMilli() {
		return candidate
	}
	return current
}
