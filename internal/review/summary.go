package review

// Counts tallies issues by severity.
type Counts struct {
	High   int
	Medium int
}

// Total returns the number of counted issues.
func (c Counts) Total() int { return c.High + c.Medium }

// Count tallies the severities of issues.
func Count(issues []Issue) Counts {
	var c Counts
	for _, iss := range issues {
		switch iss.Severity {
		case SeverityHigh:
			c.High++
		case SeverityMedium:
			c.Medium++
		}
	}
	return c
}

// CountAll tallies every issue in a combined report.
func CountAll(c *CombinedReport) Counts {
	var total Counts
	for _, r := range c.Reports {
		n := Count(r.Issues)
		total.High += n.High
		total.Medium += n.Medium
	}
	return total
}
