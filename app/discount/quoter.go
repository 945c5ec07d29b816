package discount

import (
	"github.com/pkg/errors"

	"github.com/km-arc/go-beans/app/member"
)

// Quote is the price a member pays for one item.
type Quote struct {
	MemberID      int64  `json:"member_id"`
	Item          string `json:"item"`
	Price         int    `json:"price"`
	DiscountPrice int    `json:"discount_price"`
	Total         int    `json:"total"`
}

// Quoter prices items for stored members with a single policy.
type Quoter struct {
	members member.Repository
	policy  Policy
}

func NewQuoter(members member.Repository, policy Policy) *Quoter {
	return &Quoter{members: members, policy: policy}
}

// Quote looks the member up and applies the policy.
func (q *Quoter) Quote(memberID int64, item string, price int) (Quote, error) {
	if price < 0 {
		return Quote{}, errors.Errorf("negative price %d", price)
	}
	m, err := q.members.FindByID(memberID)
	if err != nil {
		return Quote{}, err
	}
	d := q.policy.Discount(m, price)
	return Quote{
		MemberID:      m.ID,
		Item:          item,
		Price:         price,
		DiscountPrice: d,
		Total:         price - d,
	}, nil
}
