// Package discount prices orders for members. Two policies are registered
// side by side, so consumers must name the one they want.
package discount

import "github.com/km-arc/go-beans/app/member"

// Bean names.
const (
	RateBean = "rateDiscountPolicy"
	FixBean  = "fixDiscountPolicy"
)

// Policy computes the discount a member gets on a price.
type Policy interface {
	Discount(m member.Member, price int) int
}

// RatePolicy takes a percentage off for VIP members.
type RatePolicy struct {
	Percent int
}

func NewRatePolicy(percent int) *RatePolicy { return &RatePolicy{Percent: percent} }

func (p *RatePolicy) Discount(m member.Member, price int) int {
	if m.Grade != member.VIP {
		return 0
	}
	return price * p.Percent / 100
}

// FixPolicy takes a flat amount off for VIP members.
type FixPolicy struct {
	Amount int
}

func NewFixPolicy(amount int) *FixPolicy { return &FixPolicy{Amount: amount} }

func (p *FixPolicy) Discount(m member.Member, price int) int {
	if m.Grade != member.VIP {
		return 0
	}
	return min(p.Amount, price)
}
