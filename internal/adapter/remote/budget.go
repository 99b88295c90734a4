package remote

import "golang.org/x/time/rate"

// NewBudget returns the outbound call budget shared by all collaborators.
// A non-positive rate disables the budget.
func NewBudget(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = int(perSecond * 2)
		if burst < 1 {
			burst = 1
		}
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
