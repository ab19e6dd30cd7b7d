package usage

import "time"

// periodLength is the rolling credit window. Purchased credits raise the
// limit only until the window rolls over.
const periodLength = 7 * 24 * time.Hour

func defaultUsage() Usage {
	return Usage{
		Plan:     "Starter",
		Limit:    10,
		Used:     0,
		ResetsAt: time.Now().UTC().Add(periodLength),
	}
}
